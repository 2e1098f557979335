// Package worker runs long-lived background loops inside the fx lifecycle.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type worker interface {
	Start()
	Stop()
}

// runnable blocks until ctx is cancelled. A returned error ends the worker.
type runnable interface {
	Run(ctx context.Context) error
}

type Options struct {
	ShutdownOnError bool
}

type Option func(*Options)

// WithShutdown stops the application when Run fails or panics.
func WithShutdown() Option {
	return func(o *Options) {
		o.ShutdownOnError = true
	}
}

func newOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type baseWorker struct {
	name       string
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	log        *zap.Logger
	runFunc    func(ctx context.Context) error
	shutdowner fx.Shutdowner
	options    Options
}

func (w *baseWorker) Start() {
	w.log.Info("starting " + w.name)
	var ctx context.Context
	ctx, w.cancelFunc = context.WithCancel(context.Background())
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *baseWorker) run(ctx context.Context) {
	var err error
	var catcher panics.Catcher
	catcher.Try(func() { err = w.runFunc(ctx) })
	if r := catcher.Recovered(); r != nil {
		err = fmt.Errorf("%s panicked: %w", w.name, r.AsError())
	}

	if err == nil {
		w.log.Info(w.name + " stopped")
		return
	}

	if !w.options.ShutdownOnError {
		w.log.Error(w.name+" stopped with error", zap.Error(err))
		return
	}
	w.log.Error(w.name+" fatal error, initiating shutdown", zap.Error(err))
	if shutdownErr := w.shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
		w.log.Error("failed to initiate shutdown", zap.Error(shutdownErr))
	}
}

func (w *baseWorker) Stop() {
	w.log.Info("stopping " + w.name)
	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.wg.Wait()
}

func registerWorker(lc fx.Lifecycle, w worker) {
	lc.Append(fx.StartStopHook(w.Start, w.Stop))
}

// Register returns a constructor that wraps the T dependency in a worker started and stopped with the app.
//
//	worker.Register[*producer.Producer]("kafka-producer")
//	worker.Register[*consumer.Loop]("consumer-user-created", worker.WithShutdown())
func Register[T runnable](name string, opts ...Option) any {
	options := newOptions(opts...)

	return fx.Annotate(
		func(lc fx.Lifecycle, log *zap.Logger, shutdowner fx.Shutdowner, dep T) worker {
			w := &baseWorker{
				name:       name,
				log:        log.With(zap.String("worker", name)),
				runFunc:    dep.Run,
				shutdowner: shutdowner,
				options:    options,
			}
			registerWorker(lc, w)
			return w
		},
		fx.ResultTags(`group:"workers"`),
	)
}

// NewWorkersModule instantiates every registered worker.
func NewWorkersModule() fx.Option {
	return fx.Invoke(fx.Annotate(func([]worker) {}, fx.ParamTags(`group:"workers"`)))
}
