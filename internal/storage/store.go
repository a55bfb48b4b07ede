package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/phasespace"
)

// Store persists generated runs under a base directory, one
// subdirectory per run holding metadata.json, orbit.csv and
// particles.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Preset    string    `json:"preset,omitempty"`
	Seed      uint64    `json:"seed"`
	Strategy  string    `json:"strategy"`
	ProgMass  float64   `json:"prog_mass"`
	Particles int       `json:"particles"`
	Samples   int       `json:"orbit_samples"`
	SpanMyr   float64   `json:"span_myr"`
	// StreamTimeMyr is the time the stream is evaluated at; the particle
	// CSV only carries release times, so it lives here.
	StreamTimeMyr float64 `json:"stream_time_myr"`
}

// Save writes one generated stream with its progenitor orbit and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, stream *phasespace.MockStream, orbit *phasespace.Orbit) (string, error) {
	runID := fmt.Sprintf("run_%s", uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Particles = stream.Len()
	meta.Samples = orbit.Len()
	meta.StreamTimeMyr = stream.T
	if orbit.Len() > 0 {
		meta.SpanMyr = orbit.T[orbit.Len()-1] - orbit.T[0]
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writePhaseCSV(filepath.Join(runDir, "orbit.csv"), "t", orbit.T, orbit.Qs(), orbitMomenta(orbit)); err != nil {
		return "", err
	}
	if err := writePhaseCSV(filepath.Join(runDir, "particles.csv"), "release_t", stream.ReleaseTime, stream.Q, stream.P); err != nil {
		return "", err
	}
	return runID, nil
}

func orbitMomenta(o *phasespace.Orbit) []linalg.Vec3 {
	out := make([]linalg.Vec3, o.Len())
	for i, w := range o.W {
		out[i] = w.P()
	}
	return out
}

func writePhaseCSV(path, timeCol string, ts []float64, q, p []linalg.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{timeCol, "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	for i := range q {
		row := []string{
			formatF(ts[i]),
			formatF(q[i].X), formatF(q[i].Y), formatF(q[i].Z),
			formatF(p[i].X), formatF(p[i].Y), formatF(p[i].Z),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadParticles reads a saved stream back, restoring its evaluation
// time from the run metadata.
func (s *Store) LoadParticles(runID string) (*phasespace.MockStream, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	ts, q, p, err := readPhaseCSV(filepath.Join(s.baseDir, runID, "particles.csv"))
	if err != nil {
		return nil, err
	}
	return &phasespace.MockStream{Q: q, P: p, ReleaseTime: ts, T: meta.StreamTimeMyr}, nil
}

// LoadOrbit reads a saved progenitor orbit back. The potential is not
// persisted, so energies cannot be recomputed from the result.
func (s *Store) LoadOrbit(runID string) (*phasespace.Orbit, error) {
	ts, q, p, err := readPhaseCSV(filepath.Join(s.baseDir, runID, "orbit.csv"))
	if err != nil {
		return nil, err
	}
	ws := make([]phasespace.W, len(q))
	for i := range q {
		ws[i] = phasespace.NewW(q[i], p[i])
	}
	return &phasespace.Orbit{W: ws, T: ts}, nil
}

func readPhaseCSV(path string) ([]float64, []linalg.Vec3, []linalg.Vec3, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, nil
	}

	n := len(records) - 1
	ts := make([]float64, 0, n)
	q := make([]linalg.Vec3, 0, n)
	p := make([]linalg.Vec3, 0, n)

	for _, record := range records[1:] {
		if len(record) != 7 {
			return nil, nil, nil, fmt.Errorf("storage: malformed row in %s", path)
		}
		vals := make([]float64, 7)
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("storage: %s: %w", path, err)
			}
			vals[j] = v
		}
		ts = append(ts, vals[0])
		q = append(q, linalg.Vec3{X: vals[1], Y: vals[2], Z: vals[3]})
		p = append(p, linalg.Vec3{X: vals[4], Y: vals[5], Z: vals[6]})
	}
	return ts, q, p, nil
}
