/*
Package protocol builds and runs well-to-well transfer protocols.

A Builder turns source-table rows into a Protocol after validating the whole
table in one pass. The Protocol is a small state machine with three states:

  - Active: the cursor points at an uncompleted transfer.
  - PlateComplete: every transfer of the current plate is resolved; the operator
    must confirm (NextPlateConfirm) before the cursor moves to another plate.
  - ProtocolComplete: the current plate and every later plate are resolved.

Every operation returns a domain.Result. Guarded operations reject instead of
mutating, so repeating a command on unchanged state is always safe.

	b := protocol.NewBuilder(protocol.WithDensities(wells.Density96, wells.Density384))
	p, err := b.Build(table.Rows, table.DestPlate)
	if err != nil {
		// *domain.BuildError lists every violation
	}
	res := p.Complete()
	if res.IsConfirm() {
		res = p.NextPlateConfirm()
	}
*/
package protocol
