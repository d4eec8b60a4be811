// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// CodecVersion is the current default codec version
const CodecVersion = 0

var (
	errStateWrongVersion = errors.New("wrong state version")

	// Codec serializes contract state for the host
	Codec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()

	errs := wrappers.Errs{}
	errs.Add(
		c.RegisterType(&Counter{}),
		Codec.RegisterCodec(CodecVersion, c),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}

// MarshalState returns the persisted form of [state]
func MarshalState(state Counter) ([]byte, error) {
	return Codec.Marshal(CodecVersion, &state)
}

// UnmarshalState parses bytes written by MarshalState
func UnmarshalState(b []byte) (Counter, error) {
	state := Counter{}
	parsedVersion, err := Codec.Unmarshal(b, &state)
	if err != nil {
		return Counter{}, fmt.Errorf("failed to unmarshal contract state: %w", err)
	}
	if parsedVersion != CodecVersion {
		return Counter{}, errStateWrongVersion
	}
	return state, nil
}

// StateRoot commits to the persisted form of [state]
func StateRoot(state Counter) (ids.ID, error) {
	b, err := MarshalState(state)
	if err != nil {
		return ids.Empty, err
	}
	return hashing.ComputeHash256Array(b), nil
}
