package launches

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = `,Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
0,1,CCAFS LC-40,0,0.0,F9 v1.0  B0003,v1.0
1,2,CCAFS LC-40,0,0.0,F9 v1.0  B0004,v1.0
2,3,CCAFS LC-40,0,525.0,F9 v1.0  B0005,v1.0
3,4,VAFB SLC-4E,0,500.0,F9 v1.1  B1003,v1.1
4,5,KSC LC-39A,1,2490.0,F9 FT B1031.1,FT
5,6,CCAFS SLC-40,1,3669.0,F9 B4 B1039.2,B4
`

func TestLoadCSVParsesByHeaderName(t *testing.T) {
	d, report, err := LoadCSV(strings.NewReader(sampleCSV), LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 6, report.Rows)
	require.Equal(t, 6, report.Loaded)
	require.Empty(t, report.Skipped)

	require.Equal(t, []string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"}, d.Sites())
	recs := d.Records()
	require.Equal(t, LaunchRecord{
		LaunchSite:             "KSC LC-39A",
		PayloadMassKg:          2490,
		BoosterVersionCategory: "FT",
		OutcomeClass:           OutcomeSuccess,
	}, recs[4])
}

func TestLoadCSVStripsBOMAndReordersColumns(t *testing.T) {
	data := "\ufeffclass,Booster Version Category,Payload Mass (kg),Launch Site\n1,FT,1000,KSC LC-39A\n"

	d, _, err := LoadCSV(strings.NewReader(data), LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
	require.Equal(t, "KSC LC-39A", d.Records()[0].LaunchSite)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	data := "Launch Site,Payload Mass (kg),class\nKSC LC-39A,1000,1\n"

	_, _, err := LoadCSV(strings.NewReader(data), LoadOptions{})
	require.ErrorIs(t, err, ErrMissingColumn)
	require.Contains(t, err.Error(), ColumnBoosterVersionCategory)
}

func TestLoadCSVMalformedRows(t *testing.T) {
	data := strings.Join([]string{
		"Launch Site,Payload Mass (kg),Booster Version Category,class",
		"KSC LC-39A,1000,FT,1",
		"KSC LC-39A,heavy,FT,1",
		"KSC LC-39A,-5,FT,1",
		"KSC LC-39A,2000,FT,2",
		",2000,FT,1",
		"KSC LC-39A,3000",
		"VAFB SLC-4E,4000,B5,1.0",
	}, "\n") + "\n"

	t.Run("fail policy aborts", func(t *testing.T) {
		_, _, err := LoadCSV(strings.NewReader(data), LoadOptions{MalformedRows: MalformedFail})
		require.Error(t, err)
		require.Contains(t, err.Error(), "line 3")
	})

	t.Run("skip policy records each row", func(t *testing.T) {
		d, report, err := LoadCSV(strings.NewReader(data), LoadOptions{MalformedRows: MalformedSkip})
		require.NoError(t, err)
		require.Equal(t, 7, report.Rows)
		require.Equal(t, 2, report.Loaded)
		require.Len(t, report.Skipped, 5)

		lines := make([]int, 0, len(report.Skipped))
		for _, s := range report.Skipped {
			lines = append(lines, s.Line)
		}
		require.Equal(t, []int{3, 4, 5, 6, 7}, lines)
		require.Equal(t, []string{"KSC LC-39A", "VAFB SLC-4E"}, d.Sites())
	})
}

func TestLoadCSVEmpty(t *testing.T) {
	_, _, err := LoadCSV(strings.NewReader(""), LoadOptions{})
	require.ErrorIs(t, err, ErrEmptyDataset)

	_, _, err = LoadCSV(strings.NewReader("Launch Site,Payload Mass (kg),Booster Version Category,class\n"), LoadOptions{})
	require.ErrorIs(t, err, ErrEmptyDataset)

	_, report, err := LoadCSV(strings.NewReader("Launch Site,Payload Mass (kg),Booster Version Category,class\nA,x,FT,1\n"), LoadOptions{MalformedRows: MalformedSkip})
	require.ErrorIs(t, err, ErrEmptyDataset)
	require.Len(t, report.Skipped, 1)
}

func TestLoadCSVUnknownPolicy(t *testing.T) {
	_, _, err := LoadCSV(strings.NewReader(sampleCSV), LoadOptions{MalformedRows: "ignore"})
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spacex_launch_dash.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	d, _, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 6, d.Len())

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	require.ErrorIs(t, err, os.ErrNotExist)
}
