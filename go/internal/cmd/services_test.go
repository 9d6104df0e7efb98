package main

import (
	"math/rand"
	"sync"
	"testing"
)

func TestLockedSourceConcurrentDraws(t *testing.T) {
	rng := rand.New(&lockedSource{src: rand.NewSource(1)})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if n := rng.Intn(100); n < 0 || n >= 100 {
					t.Errorf("Intn(100) = %d out of range", n)
					return
				}
			}
		}()
	}
	wg.Wait()
}
