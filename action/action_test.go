package action

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rustyeddy/sentinel/devcontrol"
	"github.com/rustyeddy/sentinel/metrics"
	"github.com/rustyeddy/sentinel/mqttio"
	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testObj() *state.Object {
	return state.New(rawevent.NewBLE("aa:bb", map[string]any{
		rawevent.AttrTemperature: 22.5,
		rawevent.AttrIsOn:        true,
	}), nil, state.Snapshot{})
}

func TestLogExecuteFormatsMessage(t *testing.T) {
	a := &Log{Message: "temp is {temperature}"}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	assert.NoError(t, err)
}

func TestShellExecuteNonZeroExitNeverPropagates(t *testing.T) {
	a := &Shell{Argv: []string{"false"}}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	assert.NoError(t, err)
}

func TestShellExecuteFormatsArgv(t *testing.T) {
	a := &Shell{Argv: []string{"echo", "{temperature}"}}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	assert.NoError(t, err)
}

func TestWebhookPOSTSendsJSONPayload(t *testing.T) {
	var gotBody map[string]any
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := &Webhook{
		URL:     srv.URL,
		Payload: map[string]any{"reading": "{temperature}"},
	}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "22.5", gotBody["reading"])
}

func TestWebhookGETFlattensPayloadToQueryString(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := &Webhook{
		URL:     srv.URL,
		Method:  "GET",
		Payload: map[string]any{"reading": "{temperature}"},
	}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	require.NoError(t, err)
	assert.Equal(t, "reading=22.5", gotQuery)
}

func TestWebhookNon2xxLoggedNotErrored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := &Webhook{URL: srv.URL}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	assert.NoError(t, err)
}

type recordingMQTT struct {
	topic   string
	payload []byte
	retain  bool
	qos     byte
}

func (f *recordingMQTT) Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error {
	f.topic, f.payload, f.retain, f.qos = topic, payload, retain, qos
	return nil
}
func (f *recordingMQTT) Subscribe(ctx context.Context, topic string, qos byte, handler func(mqttio.Message)) (func() error, error) {
	return nil, nil
}
func (f *recordingMQTT) SetWill(topic string, payload []byte, retain bool, qos byte) error {
	return nil
}

func TestMQTTPublishFormatsTopicAndEncodesPayload(t *testing.T) {
	client := &recordingMQTT{}
	a := &MQTTPublish{
		Client:  client,
		Topic:   "home/{temperature}",
		Payload: map[string]any{"on": true},
		QoS:     1,
	}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	require.NoError(t, err)
	assert.Equal(t, "home/22.5", client.topic)
	assert.JSONEq(t, `{"on":true}`, string(client.payload))
	assert.Equal(t, byte(1), client.qos)
}

func TestDeviceCommandResolvesAliasToAddress(t *testing.T) {
	aliases := state.NewAliasTable()
	require.NoError(t, aliases.Add("lamp", "cc:dd", state.DeviceParams{"channel": "1"}))

	controller := devcontrol.NewLoggingController()
	a := &DeviceCommand{
		Controller: controller,
		Alias:      "lamp",
		Method:     "turn_on",
		Params:     map[string]any{"brightness": 80},
	}
	err := a.Execute(context.Background(), testObj(), aliases)
	require.NoError(t, err)

	calls := controller.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "cc:dd", calls[0].Address)
	assert.Equal(t, "turn_on", calls[0].Method)
}

func TestDeviceCommandUnknownAliasLogsAndSkips(t *testing.T) {
	controller := devcontrol.NewLoggingController()
	a := &DeviceCommand{Controller: controller, Alias: "ghost", Method: "turn_on"}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	require.NoError(t, err)
	assert.Empty(t, controller.Calls())
}

func TestDeviceCommandRecordsMetricOnSuccess(t *testing.T) {
	publisher := metrics.NewPublisher(metrics.Filter{})
	controller := devcontrol.NewLoggingController()
	a := &DeviceCommand{
		Controller: controller,
		Publisher:  publisher,
		Address:    "dd:ee:metric-test",
		Method:     "turn_on",
	}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `address="dd:ee:metric-test"`)
}

func TestDeviceCommandNoMetricOnControllerError(t *testing.T) {
	publisher := metrics.NewPublisher(metrics.Filter{})
	a := &DeviceCommand{
		Controller: failingController{},
		Publisher:  publisher,
		Address:    "ff:00:metric-test",
		Method:     "turn_on",
	}
	err := a.Execute(context.Background(), testObj(), state.NewAliasTable())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), `address="ff:00:metric-test"`)
}

type failingController struct{}

func (failingController) Invoke(ctx context.Context, address string, config map[string]any, method string, params map[string]any) error {
	return assert.AnError
}
