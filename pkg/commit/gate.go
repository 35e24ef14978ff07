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

package commit

// 🚧 Reason explains why the move action is disabled
type Reason int

const (
	ReasonNone Reason = iota
	ReasonCompleted
	ReasonInFlight
	ReasonNoConnection
	ReasonStockInsufficient
	ReasonAwaitingApproval
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonCompleted:
		return "completed"
	case ReasonInFlight:
		return "sending"
	case ReasonNoConnection:
		return "no connection"
	case ReasonStockInsufficient:
		return "stock insufficient"
	case ReasonAwaitingApproval:
		return "awaiting approval"
	default:
		return "unknown"
	}
}

// GateInput is everything the move gate looks at
type GateInput struct {
	AnyExcess  bool
	SyncFailed bool
	Offline    bool
	// RequireReported is set by the reported workflow
	RequireReported bool
	Reported        bool
	InFlight        bool
	Done            bool
}

// Decision is the evaluated gate
type Decision struct {
	Enabled bool
	Reason  Reason
}

// ✅ Evaluate decides whether the move action is enabled. The first failing
// condition in order completed, in flight, connection, stock, approval names
// the reason.
func Evaluate(in GateInput) Decision {
	switch {
	case in.Done:
		return Decision{Reason: ReasonCompleted}
	case in.InFlight:
		return Decision{Reason: ReasonInFlight}
	case in.Offline || in.SyncFailed:
		return Decision{Reason: ReasonNoConnection}
	case in.AnyExcess:
		return Decision{Reason: ReasonStockInsufficient}
	case in.RequireReported && !in.Reported:
		return Decision{Reason: ReasonAwaitingApproval}
	default:
		return Decision{Enabled: true}
	}
}
