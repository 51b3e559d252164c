package dasxml

import (
	"strings"
	"testing"

	"github.com/eth2030/dassim/pkg/dassim"
)

func TestMarshalContainsCoreElements(t *testing.T) {
	r := dassim.Result{
		Shape: dassim.Shape{
			Run: 3, BlockSize: 16, FailureRate: 10, NetDegree: 6,
			Chi1: 4, Chi2: 4, VPN1: 1, VPN2: 1,
			BWUplinkProd: 100, BWUplink1: 20, BWUplink2: 40,
			NumberValidators: 64, Class1Ratio: 0.5,
		},
		TTA:            12,
		MissingSamples: 0,
		MissingVector:  []int{256, 100, 10, 0, 0},
	}

	out, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	body := string(out)

	for _, want := range []string{"<run>3</run>", "<blockSize>16</blockSize>", "<tta>12</tta>", "<netDegree>6</netDegree>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("marshaled XML missing %q:\n%s", want, body)
		}
	}
}

func TestMarshalOmitsProgressWhenAbsent(t *testing.T) {
	r := dassim.Result{Shape: dassim.Shape{BlockSize: 4}, TTA: -1}
	out, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if strings.Contains(string(out), "<progress>") {
		t.Fatal("progress element should be omitted when Result.Progress is nil")
	}
}

func TestMarshalIncludesProgressSeries(t *testing.T) {
	r := dassim.Result{
		Shape: dassim.Shape{BlockSize: 4},
		Progress: map[string][]float64{
			dassim.SeriesSamplesReceived: {0.1, 0.5, 1.0},
		},
	}
	out, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	body := string(out)
	if !strings.Contains(body, `name="samples received"`) {
		t.Fatalf("expected a series named %q in:\n%s", dassim.SeriesSamplesReceived, body)
	}
}
