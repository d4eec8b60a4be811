// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
)

// HelloMethod is the name the host uses to invoke Counter.Hello
const HelloMethod = "hello"

var (
	ErrUnknownMethod = errors.New("unknown contract method")
	ErrInvalidArgs   = errors.New("invalid contract method arguments")

	errMissingTo = errors.New(`missing "to"`)
)

// InvalidArgsError reports arguments a method could not decode. It matches
// both ErrInvalidArgs and the decoding error.
type InvalidArgsError struct {
	Method string
	Err    error
}

func (e *InvalidArgsError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidArgs, e.Method, e.Err)
}

func (e *InvalidArgsError) Unwrap() error { return e.Err }

func (e *InvalidArgsError) Is(target error) bool { return target == ErrInvalidArgs }

// HelloArgs are the JSON encoded arguments of the hello method
type HelloArgs struct {
	To AccountID `json:"to"`
}

// HelloResult is the (greeting, account) pair returned by the hello
// method. It is encoded as a two element JSON array.
type HelloResult struct {
	Greeting string
	To       AccountID
}

func (r HelloResult) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{r.Greeting, r.To.String()})
}

func (r *HelloResult) UnmarshalJSON(b []byte) error {
	var pair [2]string
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	to, err := ParseAccountID(pair[1])
	if err != nil {
		return err
	}
	r.Greeting = pair[0]
	r.To = to
	return nil
}

// Methods returns the names of the methods Dispatch accepts
func Methods() []string {
	return []string{HelloMethod}
}

// ValidateCall returns nil iff Dispatch would accept [method] and [args]
func ValidateCall(method string, args []byte) error {
	switch method {
	case HelloMethod:
		_, err := decodeHelloArgs(args)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// Dispatch invokes [method] on [state] with JSON encoded [args] and returns
// the JSON encoded result.
func Dispatch(state Counter, method string, args []byte) ([]byte, error) {
	switch method {
	case HelloMethod:
		helloArgs, err := decodeHelloArgs(args)
		if err != nil {
			return nil, err
		}
		greeting, to := state.Hello(helloArgs.To)
		return json.Marshal(HelloResult{Greeting: greeting, To: to})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func decodeHelloArgs(args []byte) (HelloArgs, error) {
	helloArgs := HelloArgs{}
	if err := json.Unmarshal(args, &helloArgs); err != nil {
		return HelloArgs{}, &InvalidArgsError{Method: HelloMethod, Err: err}
	}
	if helloArgs.To.IsEmpty() {
		return HelloArgs{}, &InvalidArgsError{Method: HelloMethod, Err: errMissingTo}
	}
	return helloArgs, nil
}
