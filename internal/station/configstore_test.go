package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigStoreReadonlyRejected(t *testing.T) {
	s := NewConfigStore()
	s.Define("NumberOfConnectors", "2", true, true, false)

	result := s.Set("NumberOfConnectors", "5", false)
	assert.Equal(t, SetRejectedReadonly, result)
	assert.Equal(t, "2", s.Get("NumberOfConnectors").Value)
}

func TestConfigStoreHeartbeatAliasSync(t *testing.T) {
	s := NewConfigStore()
	s.Define(keyHeartbeatInterval, "60", false, true, false)

	result := s.Set(keyHeartBeatIntervalAlt, "30", false)
	assert.Equal(t, SetAccepted, result)
	assert.Equal(t, "30", s.Get(keyHeartbeatInterval).Value)
	assert.Equal(t, "30", s.Get(keyHeartBeatIntervalAlt).Value)
}

func TestConfigStoreUnknownKey(t *testing.T) {
	s := NewConfigStore()
	assert.Equal(t, SetUnknownKey, s.Set("DoesNotExist", "x", false))
}

func TestConfigStoreRebootRequired(t *testing.T) {
	s := NewConfigStore()
	s.Define("ConnectionTimeOut", "30", false, true, true)
	assert.Equal(t, SetRebootRequired, s.Set("ConnectionTimeOut", "60", false))
}

func TestConfigStoreListVisible(t *testing.T) {
	s := NewConfigStore()
	s.Define("Visible", "1", false, true, false)
	s.Define("Hidden", "2", false, false, false)

	found, unknown := s.ListVisible(nil)
	assert.Len(t, found, 1)
	assert.Equal(t, "Visible", found[0].Key)
	assert.Empty(t, unknown)

	found, unknown = s.ListVisible([]string{"Visible", "Missing"})
	assert.Len(t, found, 1)
	assert.Equal(t, []string{"Missing"}, unknown)
}
