// Package shutdown ties imgcarve runs to SIGINT and SIGTERM.
//
// One-shot commands only need a cancellable context:
//
//	ctx, stop := shutdown.WithSignals(c.Context)
//	defer stop()
//
// Watch mode runs until interrupted and still has work to do afterwards,
// so it uses a Group:
//
//	g := shutdown.NewGroup(10 * time.Second)
//	g.Defer("flush metrics", flush)
//	err := g.Run(ctx, watch)
package shutdown
