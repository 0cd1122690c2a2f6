package telemetry

import (
	"context"
	"testing"
)

func TestSetupIsNoopWhenDisabled(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
		enabled  bool
	}{
		{name: "no endpoint", endpoint: "", enabled: true},
		{name: "disabled", endpoint: "http://localhost:4318", enabled: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), "tutoring-api", tc.endpoint, tc.enabled)
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}
