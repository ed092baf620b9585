/*
Package domain contains the core domain models for the WellLit transfer sequencer.

It defines the value types shared by the protocol state machine, the session
façade and every adapter. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Transfer: One planned liquid movement between a source well and a destination well.
  - PlateGroup: The ordered transfer IDs belonging to one source plate.
  - Result: The outcome of every operation (Success, Rejected, ConfirmationRequested).
  - Snapshot: The cursor view exposed to renderers and record writers.
  - Record: One row of the transfer record log.
*/
package domain
