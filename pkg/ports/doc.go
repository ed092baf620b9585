/*
Package ports defines the driven ports (interfaces) for the WellLit sequencer.

These interfaces decouple the protocol core from external implementations,
allowing the session to ingest tables from any source and mirror the transfer
record log into several storage backends.

# Key Interfaces

  - TableReader: Produces the rows of a source table (e.g., from a CSV file).
  - RecordWriter: Persists the record log of a run after every mutation.
  - RecordReader: Reads a run's record log back (inspection, contract tests).
*/
package ports
