package utils

import (
	"errors"
	"sync"

	"gorm.io/gorm"
)

// ExecuteParallel runs independent read queries concurrently and returns the
// first error. A missing record is not treated as a failure.
func ExecuteParallel(queries ...func() error) error {
	var wg sync.WaitGroup
	errChan := make(chan error, len(queries))

	for _, query := range queries {
		wg.Add(1)
		go func(q func() error) {
			defer wg.Done()
			if err := q(); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				errChan <- err
			}
		}(query)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}
	return nil
}
