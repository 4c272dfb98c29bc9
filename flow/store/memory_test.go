package store

import "testing"

func TestMemStore(t *testing.T) {
	storeUnderTest(t, NewMemStore())
}
