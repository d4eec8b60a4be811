// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package countervm

import (
	"testing"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/stretchr/testify/require"
)

func TestStaticServiceEncodeDecode(t *testing.T) {
	require := require.New(t)

	ss := CreateStaticService()
	encoded := &EncoderReply{}
	require.NoError(ss.Encode(nil, &EncoderArgs{Data: `{"to":"near"}`, Encoding: formatting.Hex}, encoded))

	decoded := &DecoderReply{}
	require.NoError(ss.Decode(nil, &DecoderArgs{Bytes: encoded.Bytes, Encoding: encoded.Encoding}, decoded))
	require.Equal(`{"to":"near"}`, decoded.Data)
}

func TestStaticServiceBuildGenesis(t *testing.T) {
	require := require.New(t)

	ss := CreateStaticService()
	reply := &BuildGenesisReply{}
	require.NoError(ss.BuildGenesis(nil, &BuildGenesisArgs{Encoding: formatting.Hex}, reply))

	genesisBytes, err := formatting.Decode(reply.Encoding, reply.Bytes)
	require.NoError(err)
	genesis, err := ParseGenesis(genesisBytes)
	require.NoError(err)
	require.Equal(DefaultGenesis(), genesis)

	err = ss.BuildGenesis(nil, &BuildGenesisArgs{Contract: "escrow"}, &BuildGenesisReply{})
	require.ErrorIs(err, errUnknownContract)
}
