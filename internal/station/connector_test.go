package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectorStartTransactionRejectsDouble(t *testing.T) {
	c := NewConnector(1)
	require.NoError(t, c.StartTransaction(1, "TAG1"))
	err := c.StartTransaction(2, "TAG2")
	assert.Error(t, err)
	assert.Equal(t, 1, c.TransactionID)
}

func TestConnectorEndTransactionClearsTransientState(t *testing.T) {
	c := NewConnector(1)
	require.NoError(t, c.StartTransaction(7, "TAG1"))
	c.TransactionRemoteStarted = true
	c.AuthorizeIDTag = "TAG1"

	c.EndTransaction()

	assert.False(t, c.TransactionStarted)
	assert.Zero(t, c.TransactionID)
	assert.Empty(t, c.TransactionIDTag)
	assert.False(t, c.TransactionRemoteStarted)
	assert.Empty(t, c.AuthorizeIDTag)
}

func TestCanAcceptNewTransaction(t *testing.T) {
	c := NewConnector(1)
	assert.True(t, c.CanAcceptNewTransaction())

	c.Availability = AvailabilityInoperative
	assert.False(t, c.CanAcceptNewTransaction())

	c.Availability = AvailabilityOperative
	require.NoError(t, c.StartTransaction(1, "TAG1"))
	assert.False(t, c.CanAcceptNewTransaction())
}

func TestSetStationAvailabilityDominance(t *testing.T) {
	cs := NewConnectors(2)
	cs.Lookup(1).Status = StatusAvailable
	cs.Lookup(2).Status = StatusCharging

	cs.SetStationAvailability(AvailabilityInoperative)

	assert.Equal(t, StatusUnavailable, cs.Lookup(1).Status)
	assert.Equal(t, StatusUnavailable, cs.Lookup(2).Status)
	assert.Equal(t, AvailabilityInoperative, cs.Lookup(0).Availability)
}

func TestValidateProfilePlacement(t *testing.T) {
	assert.NoError(t, ValidateProfilePlacement(0, PurposeChargePointMaxProfile, false))
	assert.Error(t, ValidateProfilePlacement(1, PurposeChargePointMaxProfile, false))

	assert.Error(t, ValidateProfilePlacement(1, PurposeTxProfile, false))
	assert.NoError(t, ValidateProfilePlacement(1, PurposeTxProfile, true))
	assert.Error(t, ValidateProfilePlacement(0, PurposeTxProfile, true))
}

func TestPushProfileReplacesByIdOrStackLevel(t *testing.T) {
	c := NewConnector(1)
	c.PushProfile(ChargingProfile{ChargingProfileId: 1, StackLevel: 0, Purpose: PurposeTxProfile})
	c.PushProfile(ChargingProfile{ChargingProfileId: 2, StackLevel: 0, Purpose: PurposeTxProfile})
	require.Len(t, c.ChargingProfiles, 1)
	assert.Equal(t, 2, c.ChargingProfiles[0].ChargingProfileId)

	c.PushProfile(ChargingProfile{ChargingProfileId: 3, StackLevel: 1, Purpose: PurposeTxDefaultProfile})
	require.Len(t, c.ChargingProfiles, 2)
}

func TestClearMatchingByID(t *testing.T) {
	cs := NewConnectors(2)
	cs.Lookup(1).PushProfile(ChargingProfile{ChargingProfileId: 7})
	cs.Lookup(2).PushProfile(ChargingProfile{ChargingProfileId: 7})

	id := 7
	assert.True(t, cs.Lookup(1).ClearMatching(&id, nil, nil))
	assert.True(t, cs.Lookup(2).ClearMatching(&id, nil, nil))
	assert.Empty(t, cs.Lookup(1).ChargingProfiles)
	assert.Empty(t, cs.Lookup(2).ChargingProfiles)
}

func TestTransactionConnectorIDLookup(t *testing.T) {
	cs := NewConnectors(2)
	require.NoError(t, cs.Lookup(2).StartTransaction(42, "TAG"))

	id, found := cs.TransactionConnectorID(42)
	assert.True(t, found)
	assert.Equal(t, 2, id)

	_, found = cs.TransactionConnectorID(99)
	assert.False(t, found)
}
