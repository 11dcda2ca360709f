package conversation

import (
	"fmt"
	"math/rand"
)

// orderCodePrefix marks the token the model echoes back when an order is done.
const orderCodePrefix = "#sk-"

// NewOrderCode generates the per-conversation closing marker: the literal
// prefix followed by five digits from a random fraction. Not cryptographic;
// a customer only ever has one open conversation, so collisions don't matter.
func NewOrderCode() string {
	return fmt.Sprintf("%s%05d", orderCodePrefix, rand.Intn(100000))
}
