// Package csvstore loads the flat input record sets and writes the edge
// and node lists as comma-delimited files. It is the I/O shell around
// the pipeline core: loading is cached per file contents so repeated
// pipeline runs within a session reuse one parsed RecordSet.
package csvstore

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-votegraph/internal/domain"
	"github.com/ahrav/go-votegraph/internal/ports"
)

var _ ports.RecordSource = (*Store)(nil)

// Store loads the contestant, vote and optional cultural-dimension CSV
// files and caches the parsed result keyed by a SHA256 hash of the file
// contents. Concurrent loads of identical content are collapsed with
// singleflight, so a session pays the parse cost once.
type Store struct {
	votesPath       string
	contestantsPath string
	culturalPath    string // empty disables the cultural set

	logger *slog.Logger

	// cache stores parsed record sets indexed by content hash.
	// Cached sets MUST NOT be mutated by callers.
	cache   map[string]*domain.RecordSet
	cacheMu sync.RWMutex
	sf      singleflight.Group
}

// StoreOption configures optional Store collaborators.
type StoreOption func(*Store)

// WithLogger sets the structured logger used for load diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a Store for the given file paths. culturalPath may be
// empty, in which case no cultural dimensions are loaded.
func NewStore(votesPath, contestantsPath, culturalPath string, opts ...StoreOption) *Store {
	s := &Store{
		votesPath:       filepath.Clean(votesPath),
		contestantsPath: filepath.Clean(contestantsPath),
		culturalPath:    culturalPath,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:           make(map[string]*domain.RecordSet),
	}
	if s.culturalPath != "" {
		s.culturalPath = filepath.Clean(s.culturalPath)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses the record sets, serving repeated calls from the
// content-hash cache. The returned RecordSet is shared across callers
// and must be treated as read-only.
func (s *Store) Load(ctx context.Context) (*domain.RecordSet, error) {
	votesData, err := os.ReadFile(s.votesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read votes file: %w", err)
	}
	contestantsData, err := os.ReadFile(s.contestantsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read contestants file: %w", err)
	}
	var culturalData []byte
	if s.culturalPath != "" {
		culturalData, err = os.ReadFile(s.culturalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read cultural dimensions file: %w", err)
		}
	}

	hash := contentHash(votesData, contestantsData, culturalData)

	if rs, ok := s.cachedSet(hash); ok {
		return rs, nil
	}

	// Singleflight prevents concurrent parses of identical content.
	v, err, _ := s.sf.Do(hash, func() (any, error) {
		// Re-check inside the flight to handle the race between the cache
		// read and group execution.
		if rs, ok := s.cachedSet(hash); ok {
			return rs, nil
		}

		rs, err := parseRecordSet(votesData, contestantsData, culturalData)
		if err != nil {
			return nil, err
		}

		s.cacheMu.Lock()
		s.cache[hash] = rs
		s.cacheMu.Unlock()

		s.logger.Info("record sets loaded",
			"votes", len(rs.Votes),
			"contestants", len(rs.Contestants),
			"cultural", len(rs.Cultural),
		)
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.RecordSet), nil
}

func (s *Store) cachedSet(hash string) (*domain.RecordSet, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	rs, ok := s.cache[hash]
	return rs, ok
}

// contentHash computes a SHA256 over the three files with length framing
// so boundary shifts between files cannot collide.
func contentHash(parts ...[]byte) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%d:", len(part))
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func parseRecordSet(votesData, contestantsData, culturalData []byte) (*domain.RecordSet, error) {
	votes, err := parseVotes(votesData)
	if err != nil {
		return nil, err
	}
	contestants, err := parseContestants(contestantsData)
	if err != nil {
		return nil, err
	}

	rs := &domain.RecordSet{Votes: votes, Contestants: contestants}

	if len(culturalData) > 0 {
		cultural, columns, err := parseCultural(culturalData)
		if err != nil {
			return nil, err
		}
		rs.Cultural = cultural
		rs.CulturalColumns = columns
	}
	return rs, nil
}

// columnIndex resolves required column positions from a header row.
// Extra columns are ignored; a missing required column is a DataError.
func columnIndex(set string, header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, domain.NewDataError(set, 0, "",
				fmt.Errorf("%w: column %q", domain.ErrMissingField, name))
		}
	}
	return idx, nil
}

func readAll(set string, data []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, domain.NewDataError(set, 0, "", fmt.Errorf("%w: %v", domain.ErrMalformedValue, err))
	}
	if len(rows) == 0 {
		return nil, domain.NewDataError(set, 0, "", fmt.Errorf("%w: header row", domain.ErrMissingField))
	}
	return rows, nil
}

func parseVotes(data []byte) ([]domain.Vote, error) {
	const set = "votes"

	rows, err := readAll(set, data)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(set, rows[0], []string{
		"year", "round", "from_country_id", "to_country_id",
		"points_sf", "points_final", "total_points",
	})
	if err != nil {
		return nil, err
	}

	votes := make([]domain.Vote, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 1

		year, err := parseInt(set, rowNum, "year", row[idx["year"]])
		if err != nil {
			return nil, err
		}
		total, err := parseFloat(set, rowNum, "total_points", row[idx["total_points"]])
		if err != nil {
			return nil, err
		}
		pointsSF, err := parseOptionalFloat(set, rowNum, "points_sf", row[idx["points_sf"]])
		if err != nil {
			return nil, err
		}
		pointsFinal, err := parseOptionalFloat(set, rowNum, "points_final", row[idx["points_final"]])
		if err != nil {
			return nil, err
		}

		from := strings.TrimSpace(row[idx["from_country_id"]])
		to := strings.TrimSpace(row[idx["to_country_id"]])
		if from == "" || to == "" {
			return nil, domain.NewDataError(set, rowNum, "",
				fmt.Errorf("%w: country id", domain.ErrMissingField))
		}

		votes = append(votes, domain.Vote{
			Year:          year,
			Round:         strings.TrimSpace(row[idx["round"]]),
			FromCountryID: from,
			ToCountryID:   to,
			PointsSF:      pointsSF,
			PointsFinal:   pointsFinal,
			TotalPoints:   total,
		})
	}
	return votes, nil
}

func parseContestants(data []byte) ([]domain.Contestant, error) {
	const set = "contestants"

	rows, err := readAll(set, data)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(set, rows[0], []string{"year", "to_country_id", "to_country_name"})
	if err != nil {
		return nil, err
	}

	contestants := make([]domain.Contestant, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 1

		year, err := parseInt(set, rowNum, "year", row[idx["year"]])
		if err != nil {
			return nil, err
		}
		id := strings.TrimSpace(row[idx["to_country_id"]])
		if id == "" {
			return nil, domain.NewDataError(set, rowNum, "",
				fmt.Errorf("%w: to_country_id", domain.ErrMissingField))
		}

		contestants = append(contestants, domain.Contestant{
			Year:          year,
			ToCountryID:   id,
			ToCountryName: strings.TrimSpace(row[idx["to_country_name"]]),
		})
	}
	return contestants, nil
}

// parseCultural reads the optional cultural-dimensions set. Every column
// after country_id is treated as a named numeric dimension; blank cells
// mean the dimension is missing for that country.
func parseCultural(data []byte) ([]domain.CulturalDimensions, []string, error) {
	const set = "cultural_dimensions"

	rows, err := readAll(set, data)
	if err != nil {
		return nil, nil, err
	}
	idx, err := columnIndex(set, rows[0], []string{"country_id"})
	if err != nil {
		return nil, nil, err
	}

	countryCol := idx["country_id"]
	columns := make([]string, 0, len(rows[0])-1)
	for i, name := range rows[0] {
		if i == countryCol {
			continue
		}
		columns = append(columns, strings.TrimSpace(name))
	}

	records := make([]domain.CulturalDimensions, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 1

		id := strings.TrimSpace(row[countryCol])
		if id == "" {
			return nil, nil, domain.NewDataError(set, rowNum, "",
				fmt.Errorf("%w: country_id", domain.ErrMissingField))
		}

		values := make(map[string]float64, len(columns))
		col := 0
		for j, cell := range row {
			if j == countryCol {
				continue
			}
			name := columns[col]
			col++

			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, domain.NewDataError(set, rowNum, id,
					fmt.Errorf("%w: %s=%q", domain.ErrMalformedValue, name, cell))
			}
			values[name] = v
		}

		records = append(records, domain.CulturalDimensions{CountryID: id, Values: values})
	}
	return records, columns, nil
}

func parseInt(set string, row int, field, cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, domain.NewDataError(set, row, "",
			fmt.Errorf("%w: %s", domain.ErrMissingField, field))
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return 0, domain.NewDataError(set, row, "",
			fmt.Errorf("%w: %s=%q", domain.ErrMalformedValue, field, cell))
	}
	return v, nil
}

func parseFloat(set string, row int, field, cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, domain.NewDataError(set, row, "",
			fmt.Errorf("%w: %s", domain.ErrMissingField, field))
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, domain.NewDataError(set, row, "",
			fmt.Errorf("%w: %s=%q", domain.ErrMalformedValue, field, cell))
	}
	return v, nil
}

func parseOptionalFloat(set string, row int, field, cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, domain.NewDataError(set, row, "",
			fmt.Errorf("%w: %s=%q", domain.ErrMalformedValue, field, cell))
	}
	return &v, nil
}
