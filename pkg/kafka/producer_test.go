package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/cloudevents"
)

func headerMap(t *testing.T, event *cloudevents.TMSCloudEvent) (map[string]string, []byte, []byte) {
	t.Helper()
	msg, err := BuildMessage(event)
	require.NoError(t, err)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers, msg.Key, msg.Value
}

func TestBuildMessage(t *testing.T) {
	event := &cloudevents.TMSCloudEvent{
		SpecVersion:     "1.0",
		Type:            cloudevents.RequestToCarrier,
		Source:          cloudevents.SourceTMS,
		Subject:         "shipping/sh-1",
		ID:              "evt-1",
		Time:            time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		DataContentType: "application/json",
		Data:            cloudevents.NotificationData{ShippingID: "sh-1"},
		ShippingID:      "sh-1",
	}

	headers, key, value := headerMap(t, event)

	assert.Equal(t, "shipping/sh-1", string(key))
	assert.Equal(t, cloudevents.RequestToCarrier, headers["ce-type"])
	assert.Equal(t, "evt-1", headers["ce-id"])
	assert.Equal(t, "2024-03-01T10:00:00Z", headers["ce-time"])
	assert.Equal(t, "sh-1", headers["ce-tmsshippingid"])
	assert.NotContains(t, headers, "ce-tmscorrelationid")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, "sh-1", decoded["data"].(map[string]interface{})["shippingId"])
}
