// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

// Greeting is the text returned by Counter.Hello
const Greeting = "hello"

// Counter is the contract state. It carries no data, so every Counter is
// equal to every other Counter and there is nothing to mutate.
type Counter struct{}

// NewCounter returns the default contract state
func NewCounter() Counter { return Counter{} }

// Hello greets [to]. It returns the greeting and a copy of [to].
func (Counter) Hello(to AccountID) (string, AccountID) {
	return Greeting, to
}
