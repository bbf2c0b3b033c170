package station

import "fmt"

// Connector is the per-connector state described in spec.md §3.
// Connector id 0 is the station-level pseudo-connector. All mutation
// happens on the station's single execution context (spec.md §5); the
// type itself does no locking and no I/O.
type Connector struct {
	ID           int
	Status       ChargePointStatus
	Availability AvailabilityType

	TransactionStarted       bool
	TransactionID            int
	TransactionIDTag         string
	TransactionEnergyImport  float64
	TransactionRemoteStarted bool

	AuthorizeIDTag      string
	LocalAuthorizeIDTag string
	IDTagLocalAuthorized bool

	ChargingProfiles []ChargingProfile
}

// NewConnector returns a connector in its boot-time state: Available,
// Operative, no transaction, empty profile stack (spec.md §3 Lifecycle).
func NewConnector(id int) *Connector {
	return &Connector{
		ID:           id,
		Status:       StatusAvailable,
		Availability: AvailabilityOperative,
	}
}

// Connectors is the station's connector map plus the accessors spec.md
// §4.1 requires: lookup, iteration, and the three transaction-id
// helpers.
type Connectors struct {
	byID map[int]*Connector
	// order preserves ascending connector-id iteration regardless of
	// map insertion order, matching the teacher's reliance on a
	// dense, predictable connector range rather than Go's randomized
	// map iteration (ChargePoint.go's getConnector pattern is lazy
	// and unordered; our station descriptor pre-populates the whole
	// range up front, so iteration order can be made deterministic).
	order []int
}

// NewConnectors builds the connector map for a station with the given
// connector count, plus connector 0 (the station pseudo-connector).
func NewConnectors(count int) *Connectors {
	c := &Connectors{byID: make(map[int]*Connector, count+1)}
	for id := 0; id <= count; id++ {
		c.byID[id] = NewConnector(id)
		c.order = append(c.order, id)
	}
	return c
}

// Lookup returns the connector with the given id, or nil if unknown.
func (c *Connectors) Lookup(id int) *Connector {
	return c.byID[id]
}

// IDs returns all connector ids in ascending order, including 0.
func (c *Connectors) IDs() []int {
	out := make([]int, len(c.order))
	copy(out, c.order)
	return out
}

// PerConnectorIDs returns connector ids > 0, ascending.
func (c *Connectors) PerConnectorIDs() []int {
	out := make([]int, 0, len(c.order))
	for _, id := range c.order {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}

// EnergyRegisterFor returns the accumulated energy register of the
// connector currently hosting transactionID, and whether it was found.
func (c *Connectors) EnergyRegisterFor(transactionID int) (float64, bool) {
	conn := c.connectorForTransaction(transactionID)
	if conn == nil {
		return 0, false
	}
	return conn.TransactionEnergyImport, true
}

// IDTagFor returns the idTag of the transaction, and whether it was found.
func (c *Connectors) IDTagFor(transactionID int) (string, bool) {
	conn := c.connectorForTransaction(transactionID)
	if conn == nil {
		return "", false
	}
	return conn.TransactionIDTag, true
}

// TransactionConnectorID returns the connector id hosting the given
// transaction, and whether one was found.
func (c *Connectors) TransactionConnectorID(transactionID int) (int, bool) {
	conn := c.connectorForTransaction(transactionID)
	if conn == nil {
		return 0, false
	}
	return conn.ID, true
}

func (c *Connectors) connectorForTransaction(transactionID int) *Connector {
	for _, id := range c.order {
		conn := c.byID[id]
		if conn.TransactionStarted && conn.TransactionID == transactionID {
			return conn
		}
	}
	return nil
}

// StartTransaction installs a new transaction on the connector,
// enforcing invariant 1 (transactionStarted ⇒ id ≠ nil ∧ tag ≠ nil)
// and invariant 5 (at most one transaction per connector).
func (c *Connector) StartTransaction(transactionID int, idTag string) error {
	if c.TransactionStarted {
		return fmt.Errorf("connector %d already has transaction %d in progress", c.ID, c.TransactionID)
	}
	c.TransactionStarted = true
	c.TransactionID = transactionID
	c.TransactionIDTag = idTag
	c.TransactionEnergyImport = 0
	return nil
}

// EndTransaction clears every transient field a transaction touches,
// per spec.md §3 Lifecycle's destruction rule.
func (c *Connector) EndTransaction() {
	c.TransactionStarted = false
	c.TransactionID = 0
	c.TransactionIDTag = ""
	c.TransactionEnergyImport = 0
	c.TransactionRemoteStarted = false
	c.AuthorizeIDTag = ""
	c.LocalAuthorizeIDTag = ""
	c.IDTagLocalAuthorized = false
}

// CanAcceptNewTransaction enforces invariant 2: an inoperative
// connector may finish an existing transaction but not accept a new one.
func (c *Connector) CanAcceptNewTransaction() bool {
	return c.Availability == AvailabilityOperative && !c.TransactionStarted
}

// SetStationAvailability applies connector-0 dominance (invariant 3):
// forcing the station to Inoperative forces every per-connector status
// to Unavailable; Operative restores per-connector choice (the caller
// is responsible for re-deriving each connector's actual status from
// its own availability once dominance is lifted).
func (cs *Connectors) SetStationAvailability(avail AvailabilityType) {
	station := cs.byID[0]
	station.Availability = avail
	if avail == AvailabilityInoperative {
		for _, id := range cs.PerConnectorIDs() {
			cs.byID[id].Status = StatusUnavailable
		}
	}
}

// ValidateProfilePlacement enforces invariant 4: TxProfile requires an
// active transaction on a connector id > 0; ChargePointMaxProfile
// requires connector id 0.
func ValidateProfilePlacement(connectorID int, purpose ChargingProfilePurpose, hasTransaction bool) error {
	switch purpose {
	case PurposeChargePointMaxProfile:
		if connectorID != 0 {
			return fmt.Errorf("ChargePointMaxProfile requires connectorId 0, got %d", connectorID)
		}
	case PurposeTxProfile:
		if connectorID == 0 || !hasTransaction {
			return fmt.Errorf("TxProfile requires an active transaction on connectorId > 0")
		}
	}
	return nil
}

// PushProfile installs cp on the connector's profile stack, replacing
// any existing entry with the same ChargingProfileId, or the same
// (purpose, stackLevel) pair, per OCPP 1.6 stack-replacement semantics
// referenced by spec.md §4.4 SetChargingProfile.
func (c *Connector) PushProfile(cp ChargingProfile) {
	for i, existing := range c.ChargingProfiles {
		if existing.ChargingProfileId == cp.ChargingProfileId ||
			(existing.Purpose == cp.Purpose && existing.StackLevel == cp.StackLevel) {
			c.ChargingProfiles[i] = cp
			return
		}
	}
	c.ChargingProfiles = append(c.ChargingProfiles, cp)
}

// ClearAll empties the connector's profile stack and reports whether
// anything was cleared.
func (c *Connector) ClearAll() bool {
	cleared := len(c.ChargingProfiles) > 0
	c.ChargingProfiles = nil
	return cleared
}

// ClearMatching removes every profile matching the ClearChargingProfile
// predicate from spec.md §4.4 and reports whether anything was cleared.
func (c *Connector) ClearMatching(id *int, purpose *ChargingProfilePurpose, stackLevel *int) bool {
	var kept []ChargingProfile
	cleared := false
	for _, cp := range c.ChargingProfiles {
		if profileMatches(cp, id, purpose, stackLevel) {
			cleared = true
			continue
		}
		kept = append(kept, cp)
	}
	c.ChargingProfiles = kept
	return cleared
}

func profileMatches(cp ChargingProfile, id *int, purpose *ChargingProfilePurpose, stackLevel *int) bool {
	if id != nil && cp.ChargingProfileId == *id {
		return true
	}
	switch {
	case purpose == nil && stackLevel != nil:
		return cp.StackLevel == *stackLevel
	case stackLevel == nil && purpose != nil:
		return cp.Purpose == *purpose
	case purpose != nil && stackLevel != nil:
		return cp.Purpose == *purpose && cp.StackLevel == *stackLevel
	}
	return false
}
