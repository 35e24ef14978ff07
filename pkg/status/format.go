// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/walteh/gesto/pkg/basket"
	"github.com/walteh/gesto/pkg/commit"
	"github.com/walteh/gesto/pkg/connectivity"
	"github.com/walteh/gesto/pkg/remote"
	"github.com/walteh/gesto/pkg/syncer"
)

// 🎨 Display configuration
const (
	indexWidth  = 3  // width of the item number
	nameWidth   = 32 // width of the item label
	amountWidth = 8  // width of quantity and stock
	timeLayout  = "2006-01-02 15:04"
)

// ItemSymbol returns the colored symbol of a stock state
func ItemSymbol(s basket.StockState) string {
	switch s {
	case basket.StateCompliant:
		return color.GreenString("✓")
	case basket.StateExcess:
		return color.RedString("✗")
	case basket.StateUnknownStock:
		return color.RedString("?")
	default:
		return color.HiBlackString("-")
	}
}

// 🛒 FormatLineItem formats one numbered basket row
func FormatLineItem(n int, it basket.LineItem, s basket.StockState, marked bool) string {
	mark := " "
	if marked {
		mark = color.YellowString("★")
	}

	qty := string(it.Quantity)
	if qty == "" {
		qty = "0"
	}
	stock := it.Stock.Text()
	if stock == "" {
		stock = "?"
	}

	qtyPart := fmt.Sprintf("%-*s", amountWidth, qty)
	switch s {
	case basket.StateExcess, basket.StateUnknownStock:
		qtyPart = color.RedString("%s", qtyPart)
	case basket.StateCompliant:
		qtyPart = color.GreenString("%s", qtyPart)
	}

	line := fmt.Sprintf("%*d %s %s %-*s %s %s",
		indexWidth, n,
		ItemSymbol(s),
		mark,
		nameWidth, it.Label(),
		qtyPart,
		color.HiBlackString("/ %s", stock))

	if it.NetContent != "" {
		line += color.HiBlackString("  (%s %s)", it.NetContent, it.NetContentUnit.Abbrev())
	}
	return line
}

// FormatSync returns the sync badge, empty while idle
func FormatSync(s syncer.Status) string {
	switch s {
	case syncer.StatusLoading:
		return color.CyanString("⏳ syncing")
	case syncer.StatusSuccess:
		return color.GreenString("✅ synced")
	case syncer.StatusError:
		return color.RedString("❌ sync failed")
	default:
		return ""
	}
}

// 📶 FormatServer returns the server indicator
func FormatServer(i connectivity.Indicator) string {
	switch i {
	case connectivity.IndicatorOnline:
		return color.GreenString("● online")
	case connectivity.IndicatorRetrying:
		return color.YellowString("◌ retrying")
	default:
		return color.RedString("○ offline")
	}
}

// FormatGate returns the move control: its label when enabled, the reason
// when not
func FormatGate(d commit.Decision, label string) string {
	if d.Enabled {
		return color.New(color.Bold, color.FgGreen).Sprintf("[ %s ]", label)
	}
	return color.HiBlackString("[ %s ]", d.Reason)
}

// 📜 FormatMovement formats one history row
func FormatMovement(m remote.Movement) string {
	var arrow string
	switch m.Kind() {
	case remote.MovementIn:
		arrow = color.GreenString("↓")
	case remote.MovementOut:
		arrow = color.RedString("↑")
	default:
		arrow = color.HiBlackString("•")
	}

	qty := string(m.Quantity)
	if d, ok := m.Quantity.Decimal(); ok {
		qty = d.String()
	}
	if m.Unit != nil && m.Unit.Abbreviation != "" {
		qty += " " + m.Unit.Abbreviation
	}

	return fmt.Sprintf("%s %s %-*s %-10s %s %s %s",
		arrow,
		color.HiBlackString("%s", m.MovementDate.Local().Format(timeLayout)),
		nameWidth, m.ItemName,
		qty,
		place(m.OriginLocal, m.OriginArea),
		color.HiBlackString("→"),
		place(m.DestinationLocal, m.DestinationArea))
}

func place(local, area string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{local, area} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

// FormatRequest formats one active request row
func FormatRequest(n int, r remote.ActiveRequest) string {
	flag := " "
	if r.HasRequests {
		flag = color.YellowString("●")
	}
	when := ""
	if !r.CreatedAt.IsZero() {
		when = color.HiBlackString("%s", r.CreatedAt.Local().Format(timeLayout))
	}
	return strings.TrimRight(fmt.Sprintf("%*d %s %-*s %-20s %3d items %s",
		indexWidth, n, flag, nameWidth, r.AreaName, r.EmployeeName, r.ProductCount, when), " ")
}
