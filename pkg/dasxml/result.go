// Package dasxml serializes a simulation Result to the flat XML form
// external tooling expects (spec.md §6, "Persisted form"). The core never
// reads or writes this format; it is the orchestrator's contract, so this
// package depends on pkg/dassim but not the reverse. encoding/xml is used
// directly: no pack repo or example carries a third-party XML library, and
// this is a straightforward flat element dump well within what the
// standard encoder covers (see DESIGN.md).
package dasxml

import (
	"encoding/xml"
	"fmt"

	"github.com/eth2030/dassim/pkg/dassim"
)

// ProgressSeries is one named per-step series, serialized as a repeated
// <value> element under a <series name="...">.
type ProgressSeries struct {
	Name   string    `xml:"name,attr"`
	Values []float64 `xml:"value"`
}

// resultXML is the wire shape for Result: one flat element per Shape
// parameter (chi as separate chi1/chi2) and terminal metric, followed by the
// per-step missing vector and any progress series.
type resultXML struct {
	XMLName xml.Name `xml:"result"`

	Run          int `xml:"run"`
	BlockSize    int `xml:"blockSize"`
	FailureRate  int `xml:"failureRate"`
	NumberNodes  int `xml:"numberNodes"`
	NetDegree    int `xml:"netDegree"`
	Chi1         int `xml:"chi1"`
	Chi2         int `xml:"chi2"`
	VPN1         int `xml:"vpn1"`
	VPN2         int `xml:"vpn2"`
	BWUplinkProd int `xml:"bwUplinkProd"`
	BWUplink1    int `xml:"bwUplink1"`
	BWUplink2    int `xml:"bwUplink2"`

	TTA            int `xml:"tta"`
	MissingSamples int `xml:"missingSamples"`

	MissingVector []int `xml:"missingVector>step,omitempty"`

	Progress []ProgressSeries `xml:"progress>series,omitempty"`
}

func toWire(r dassim.Result) resultXML {
	w := resultXML{
		Run:            r.Shape.Run,
		BlockSize:      r.Shape.BlockSize,
		FailureRate:    r.Shape.FailureRate,
		NumberNodes:    r.Shape.NumberNodes(),
		NetDegree:      r.Shape.NetDegree,
		Chi1:           r.Shape.Chi1,
		Chi2:           r.Shape.Chi2,
		VPN1:           r.Shape.VPN1,
		VPN2:           r.Shape.VPN2,
		BWUplinkProd:   r.Shape.BWUplinkProd,
		BWUplink1:      r.Shape.BWUplink1,
		BWUplink2:      r.Shape.BWUplink2,
		TTA:            r.TTA,
		MissingSamples: r.MissingSamples,
		MissingVector:  r.MissingVector,
	}
	for _, key := range []string{
		dassim.SeriesSamplesReceived, dassim.SeriesNodesReady, dassim.SeriesValidatorsReady,
		dassim.SeriesTxBuilderMean, dassim.SeriesTxClass1Mean, dassim.SeriesTxClass2Mean,
		dassim.SeriesRxClass1Mean, dassim.SeriesRxClass2Mean,
		dassim.SeriesDupClass1Mean, dassim.SeriesDupClass2Mean,
	} {
		values, ok := r.Progress[key]
		if !ok {
			continue
		}
		w.Progress = append(w.Progress, ProgressSeries{Name: key, Values: values})
	}
	return w
}

// Marshal renders a Result as indented XML.
func Marshal(r dassim.Result) ([]byte, error) {
	data, err := xml.MarshalIndent(toWire(r), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("dasxml: marshal: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
