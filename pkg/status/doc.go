/*
Package status formats basket state for the console.

	+-------------+     +-------------+
	|   basket    |     |   syncer    |
	| (items and  |     |  (status)   |
	| compliance) |     +------+------+
	+------+------+            |
	       |      +------------+
	       v      v
	+-------------+     +--------------+
	|   status    |<----| connectivity |
	| (formatting)|     | (indicator)  |
	+-------------+     +--------------+

🎯 Purpose:
- Renders one line per line item with a state symbol
- Renders the sync badge, server indicator and move control label
- Renders movement history and active request rows

⚡ Symbols:
- ✓ compliant, ✗ excess, ? unknown stock, - nothing requested
- ★ marked by the user (client only)

🔍 Example:

	c := basket.Evaluate(items, basket.StockUnknownAsZero)
	for i, it := range items {
		fmt.Println(status.FormatLineItem(i+1, it, c.State(it.ID), marks.Has(it.ID)))
	}
	fmt.Println(status.FormatGate(gate, "move to area"))

Everything here is a pure function of its arguments; nothing reads state.
*/
package status
