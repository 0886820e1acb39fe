package catalog

import (
	"context"
	"sync"
)

func (l *Loader) findDefinitions(ctx context.Context) (<-chan definition, <-chan error) {
	out := make(chan definition)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		defs, err := definitions()
		if err != nil {
			errc <- err
			return
		}

		for _, d := range defs {
			if !l.filter.Allows(d.texture) {
				continue
			}

			select {
			case out <- d:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc
}

func (l *Loader) textureWorker(in <-chan definition) (<-chan *Variant, <-chan error) {
	out := make(chan *Variant)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		var failed bool
		for d := range in {
			// Keep draining so the producer never blocks on a dead worker
			if failed {
				continue
			}

			variants, err := l.variants(d)
			if err != nil {
				errc <- err
				failed = true
				continue
			}

			for _, v := range variants {
				out <- v
			}
		}
	}()
	return out, errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := merge(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func merge[T any](cs ...<-chan T) <-chan T {
	var wg sync.WaitGroup
	out := make(chan T, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan T) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
