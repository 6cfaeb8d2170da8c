package csvstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ahrav/go-votegraph/internal/domain"
	"github.com/ahrav/go-votegraph/internal/ports"
)

var _ ports.GraphWriter = (*Writer)(nil)

// Writer persists a graph as two comma-delimited files: the edge list
// and the node list.
type Writer struct {
	edgesPath string
	nodesPath string
}

// NewWriter creates a Writer targeting the given output paths.
func NewWriter(edgesPath, nodesPath string) *Writer {
	return &Writer{
		edgesPath: filepath.Clean(edgesPath),
		nodesPath: filepath.Clean(nodesPath),
	}
}

// Write renders and writes both lists. Files are written whole; a
// partial failure leaves no torn records behind beyond the failed file.
func (w *Writer) Write(g *domain.Graph) error {
	edges, err := RenderEdges(g)
	if err != nil {
		return err
	}
	nodes, err := RenderNodes(g)
	if err != nil {
		return err
	}

	if err := os.WriteFile(w.edgesPath, edges, 0o644); err != nil {
		return fmt.Errorf("failed to write edge list: %w", err)
	}
	if err := os.WriteFile(w.nodesPath, nodes, 0o644); err != nil {
		return fmt.Errorf("failed to write node list: %w", err)
	}
	return nil
}

// RenderEdges renders the edge list as CSV bytes with the header
// from_country,to_country,weighted_points. Output is deterministic for a
// given graph.
func RenderEdges(g *domain.Graph) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"from_country", "to_country", "weighted_points"}); err != nil {
		return nil, fmt.Errorf("failed to write edge header: %w", err)
	}
	for _, e := range g.Edges {
		row := []string{e.FromCountryID, e.ToCountryID, formatFloat(e.WeightedPoints)}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write edge row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush edge list: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderNodes renders the node list as CSV bytes with the header
// country_id,country_name,count followed by the cultural dimension
// columns in source order. Countries without cultural data get empty
// cells, never dropped rows.
func RenderNodes(g *domain.Graph) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := append([]string{"country_id", "country_name", "count"}, g.CulturalColumns...)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write node header: %w", err)
	}

	for _, n := range g.Nodes {
		row := make([]string, 0, len(header))
		row = append(row, n.CountryID, n.CountryName, strconv.Itoa(n.ParticipationCount))
		for _, col := range g.CulturalColumns {
			if v, ok := n.Cultural[col]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write node row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush node list: %w", err)
	}
	return buf.Bytes(), nil
}

// formatFloat renders a float with the shortest representation that
// round-trips, keeping output byte-identical across runs.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
