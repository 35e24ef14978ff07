/*
Package operation holds the screen controllers of gesto. Each controller owns
the state of one screen and wires the lower packages together.

	+-----------+     +-----------+     +-------------+
	| Requests  | --> |  session  | <-- |   Basket    |
	+-----------+     +-----------+     +------+------+
	                                           |
	                        +------------------+------------------+
	                        |                  |                  |
	                  +-----+-----+      +-----+-----+      +-----+-----+
	                  |  syncer   |      |  commit   |      |connectivity|
	                  +-----------+      +-----------+      +-----------+

🎯 Purpose:
- Requests lists active requests and selects an area
- Basket edits quantities, syncs them and commits the movement
- Assign picks the catalog items an area can request
- History lists and undoes movements
- Settings reads and writes the stored settings

🔀 Workflows:
The basket runs either the dispatch workflow (warehouse checkout) or the
reported workflow (area request). Both share the same move gate; the
reported workflow additionally requires the request to be reported.

⚠️ Failures:
Controllers degrade remote failures to safe defaults (an empty list, the
unchanged state) and return the error so the caller can show it. A missing
or rejected area clears the session and returns ErrSessionReset.

🏃 Lifetime:
Runner ties background tasks such as the connectivity monitor to a
foreground task and stops them together.

🔍 Example:

	b := operation.NewBasket(api, session.New(store), monitor, operation.DispatchOptions())
	defer b.Close()
	if err := b.Load(ctx); err != nil {
		return err
	}
	b.Edit("15", "12.5")
	err := b.Move(ctx)
*/
package operation
