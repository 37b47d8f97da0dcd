package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RecorderSuite struct {
	suite.Suite
	dir string
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *RecorderSuite) TestAppendsLines() {
	path := filepath.Join(s.dir, "data.csv")
	r := NewCSVRecorder(path)

	s.Require().NoError(r.Record(Entry{Ratio: 0.1, Elapsed: 1500 * time.Millisecond, Fitness: 603}))
	s.Require().NoError(r.Record(Entry{Ratio: 0.075, Elapsed: 20 * time.Millisecond, Fitness: 709.5}))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal("0.1,1500,603\n0.075,20,709.5\n", string(data))
}

func (s *RecorderSuite) TestAppendsToExistingFile() {
	path := filepath.Join(s.dir, "data.csv")
	s.Require().NoError(os.WriteFile(path, []byte("0.5,1,2\n"), 0o644))

	s.Require().NoError(NewCSVRecorder(path).Record(Entry{Ratio: 0.25, Elapsed: time.Second, Fitness: -3}))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal("0.5,1,2\n0.25,1000,-3\n", string(data))
}

func (s *RecorderSuite) TestCreatesParentDirectory() {
	path := filepath.Join(s.dir, "nested", "log", "data.csv")

	s.Require().NoError(NewCSVRecorder(path).Record(Entry{Ratio: 1}))
	s.FileExists(path)
}

func (s *RecorderSuite) TestUnwritablePath() {
	// a directory where the file should be
	path := filepath.Join(s.dir, "taken")
	s.Require().NoError(os.Mkdir(path, 0o755))

	s.Error(NewCSVRecorder(path).Record(Entry{Ratio: 1}))
}

func (s *RecorderSuite) TestMemoryAndDiscard() {
	var m Memory
	s.Require().NoError(m.Record(Entry{Ratio: 0.2}))
	s.Equal([]Entry{{Ratio: 0.2}}, m.Entries())

	s.NoError(Discard{}.Record(Entry{Ratio: 0.2}))
}
