package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCSV writes the given lines, newline terminated, to path and returns it.
func WriteCSV(t testing.TB, path string, lines ...string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadLines returns the non-empty lines of the file at path.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SampleListings is a small listing table shaped like the raw upstream sample.
var SampleListings = []string{
	"id,name,host_id,neighbourhood_group,price,minimum_nights,number_of_reviews,last_review,reviews_per_month",
	"2539,Clean & quiet apt home by the park,2787,Brooklyn,149,1,9,2018-10-19,0.21",
	"2595,Skylit Midtown Castle,2845,Manhattan,225,1,45,2019-05-21,0.38",
	"3647,THE VILLAGE OF HARLEM....NEW YORK !,4632,Manhattan,150,3,0,,",
	"3831,Cozy Entire Floor of Brownstone,4869,Brooklyn,89,1,270,2019-07-05,4.64",
	"5022,Entire Apt: Spacious Studio/Loft by central park,7192,Manhattan,80,10,9,2018-11-19,0.10",
	"5099,Large Cozy 1 BR Apartment In Midtown East,7322,Manhattan,200,3,74,2019-06-22,0.59",
	"5121,BlissArtsSpace!,7356,Brooklyn,60,45,49,2017-10-05,0.40",
	"5178,Large Furnished Room Near B'way,8967,Manhattan,79,2,430,2019-06-24,3.47",
	"5203,Cozy Clean Guest Room - Family Apt,7490,Manhattan,9,2,118,2017-07-21,0.99",
	"5238,Cute & Cozy Lower East Side 1 bdrm,7549,Manhattan,1000,1,160,2019-06-09,1.33",
}
