package fixpoint

import (
	"fmt"
	"sync"
)

// errorMerger allows to listen to multiple error channels.
type errorMerger struct {
	wg        sync.WaitGroup
	errorChan chan error
}

// add error channel of the component.
func (m *errorMerger) add(kind string, ec <-chan error) {
	m.wg.Add(1)
	go m.listen(kind, ec)
}

// listen blocks until error channel is closed. Only the first error of all
// channels is kept, the rest are discarded.
func (m *errorMerger) listen(kind string, ec <-chan error) {
	defer m.wg.Done()
	for err := range ec {
		select {
		case m.errorChan <- fmt.Errorf("%s: %w", kind, err):
		default:
		}
	}
}

// wait waits for all underlying error channels to be closed and then
// closes the output error channels.
func (m *errorMerger) wait() {
	m.wg.Wait()
	close(m.errorChan)
}

// drain blocks until all listened channels are closed.
func (m *errorMerger) drain() {
	for range m.errorChan {
	}
}
