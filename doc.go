/*
Package welllit sequences well-to-well liquid transfers from one or more source
plates into a single destination plate.

An operator loads a transfer table, then walks it one transfer at a time,
marking each one completed, skipped or failed. The sequencer guarantees a
deterministic order (row order within a plate, plates in order of first
appearance), refuses to re-record a resolved transfer, allows a single-step
undo and never leaves a plate until every transfer on it is resolved or the
operator explicitly overrides.

# Layout

  - pkg/wells: well label validation for 96 and 384 well plates.
  - pkg/domain: transfers, records, results, lifecycle events and hooks.
  - pkg/protocol: the table builder and the transfer state machine.
  - pkg/session: the single-protocol façade hosts drive.
  - pkg/ports: table ingestion and record log interfaces, plus a contract suite.
  - pkg/adapters: CSV ingestion, record sinks (file, memory, Redis, SQLite)
    and the HTTP and MCP front-ends.
  - pkg/observability: Prometheus collectors and structured logging hooks.

# Usage

	sess := session.New(session.WithWriters(file.NewStore(file.DefaultDir)))

	res, err := sess.LoadFrom(ctx, csv.NewReader("plates.csv"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Message) // Loaded 24 transfers from 2 plates into DEST. Please load plate P1 to begin

	res, _ = sess.Complete(ctx)
	fmt.Println(res.Message)

Every operation returns a domain.Result: success, rejection or a request for
confirmation. Go errors are reserved for I/O failures, such as a record sink
that could not be written.

The welllit command (cmd/welllit) wires all of this behind an interactive
console, an HTTP API with server-sent events and an MCP server.
*/
package welllit
