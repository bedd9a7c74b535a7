package rawstore

import "fmt"

func errDim(want, got int) error {
	return fmt.Errorf("rawstore: vector has %d elements, want %d", got, want)
}
