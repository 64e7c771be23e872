package terrain

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type buildFunc func(ctx context.Context, coord Coord) ([]*Mesh, error)

type buildResult struct {
	coord  Coord
	meshes []*Mesh
	err    error
}

// builder builds chunk meshes on a pool of goroutines. Only mesh data is
// produced off-thread; geometry allocation and chunk insertion stay with
// the grid's goroutine. The pending set is owned by that goroutine too.
type builder struct {
	cancel  context.CancelFunc
	group   *errgroup.Group
	jobs    chan Coord
	results chan buildResult
	pending map[Coord]struct{}
}

func newBuilder(workers int, build buildFunc) *builder {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	b := &builder{
		cancel:  cancel,
		group:   group,
		jobs:    make(chan Coord, workers*8),
		results: make(chan buildResult, workers*8),
		pending: make(map[Coord]struct{}),
	}

	for range workers {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case coord := <-b.jobs:
					meshes, err := build(ctx, coord)
					if ctx.Err() != nil {
						return nil
					}
					// Failures are reported too so the coordinate leaves the
					// pending set and streaming requests it again.
					select {
					case b.results <- buildResult{coord: coord, meshes: meshes, err: err}:
					case <-ctx.Done():
						return nil
					}
				}
			}
		})
	}
	return b
}

// request queues coord unless it is already pending. It never blocks; a
// full queue is retried on the next pass.
func (b *builder) request(coord Coord) bool {
	if _, ok := b.pending[coord]; ok {
		return false
	}
	select {
	case b.jobs <- coord:
		b.pending[coord] = struct{}{}
		return true
	default:
		return false
	}
}

// forget cancels interest in coord. A result that arrives later is
// discarded by collect.
func (b *builder) forget(coord Coord) {
	delete(b.pending, coord)
}

// collect drains finished builds without blocking. fn is called for each
// result that is still pending, failed builds included; the number of
// discarded results is returned.
func (b *builder) collect(fn func(buildResult)) (discarded int) {
	for {
		select {
		case r := <-b.results:
			if _, ok := b.pending[r.coord]; !ok {
				discarded++
				continue
			}
			delete(b.pending, r.coord)
			fn(r)
		default:
			return discarded
		}
	}
}

func (b *builder) close() {
	b.cancel()
	_ = b.group.Wait()
}
