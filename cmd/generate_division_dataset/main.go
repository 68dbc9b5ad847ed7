// Command generate_division_dataset emits a synthetic division
// snapshot as YAML, for load testing and for seeding local
// deliberation sessions without a real event store.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
	"github.com/FIRSTIsrael/lems-core/internal/testutils"
)

func main() {
	var (
		teamCount  = flag.Int("teams", 24, "Number of teams to generate")
		roomCount  = flag.Int("rooms", 4, "Number of judging rooms")
		rounds     = flag.Int("rounds", 3, "Number of ranking rounds")
		seed       = flag.Int64("seed", 1, "Random seed for reproducible datasets")
		outputPath = flag.String("output", "testdata/division.yaml", "Output file path")
	)
	flag.Parse()

	div := generateDivision(*teamCount, *roomCount, *rounds, rand.New(rand.NewSource(*seed)))

	data, err := yaml.Marshal(divisionDocument(div))
	if err != nil {
		log.Fatalf("Failed to marshal division: %v", err)
	}
	if err := os.WriteFile(*outputPath, data, 0600); err != nil {
		log.Fatalf("Failed to save division: %v", err)
	}

	fmt.Printf("Generated division dataset:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Teams: %d\n", len(div.Teams))
	fmt.Printf("- Rubrics: %d\n", len(div.Rubrics))
	fmt.Printf("- Scoresheets: %d\n", len(div.Scoresheets))
	fmt.Printf("- Rooms: %d\n", *roomCount)
}

func generateDivision(teamCount, roomCount, rounds int, rng *rand.Rand) *domain.Division {
	teams := testutils.Teams(teamCount)
	b := testutils.NewDivision(teams)

	for i, t := range teams {
		room := domain.RoomID(fmt.Sprintf("room-%d", i%roomCount+1))
		b.WithSessions(testutils.Session(t.ID, room))

		for _, category := range domain.RubricCategories {
			// Rubrics carry ten fields judged 1..4.
			fields := make(map[string]int, 10)
			for f := 1; f <= 10; f++ {
				fields[fmt.Sprintf("field-%d", f)] = rng.Intn(4) + 1
			}
			b.WithRubrics(domain.RubricScore{
				TeamID:   t.ID,
				Category: category,
				Fields:   fields,
			})
		}

		for round := 1; round <= rounds; round++ {
			b.WithScoresheets(testutils.Scoresheet(t.ID, round, rng.Intn(400)+50, rng.Intn(4)+1))
		}
	}

	return b.Build()
}

// divisionDocument reshapes the snapshot into a stable YAML layout.
type document struct {
	Teams       []teamDoc       `yaml:"teams"`
	Sessions    []sessionDoc    `yaml:"sessions"`
	Rubrics     []rubricDoc     `yaml:"rubrics"`
	Scoresheets []scoresheetDoc `yaml:"scoresheets"`
}

type teamDoc struct {
	ID         string `yaml:"id"`
	Number     int    `yaml:"number"`
	Registered bool   `yaml:"registered"`
}

type sessionDoc struct {
	TeamID string `yaml:"team_id"`
	RoomID string `yaml:"room_id"`
}

type rubricDoc struct {
	TeamID   string         `yaml:"team_id"`
	Category string         `yaml:"category"`
	Fields   map[string]int `yaml:"fields"`
}

type scoresheetDoc struct {
	TeamID     string `yaml:"team_id"`
	Round      int    `yaml:"round"`
	Stage      string `yaml:"stage"`
	RobotScore int    `yaml:"robot_score"`
	GPRating   int    `yaml:"gp_rating"`
}

func divisionDocument(div *domain.Division) document {
	doc := document{}
	for _, t := range div.Teams {
		doc.Teams = append(doc.Teams, teamDoc{ID: string(t.ID), Number: t.Number, Registered: t.Registered})
	}
	for _, s := range div.Sessions {
		doc.Sessions = append(doc.Sessions, sessionDoc{TeamID: string(s.TeamID), RoomID: string(s.RoomID)})
	}
	for _, r := range div.Rubrics {
		doc.Rubrics = append(doc.Rubrics, rubricDoc{TeamID: string(r.TeamID), Category: string(r.Category), Fields: r.Fields})
	}
	for _, s := range div.Scoresheets {
		doc.Scoresheets = append(doc.Scoresheets, scoresheetDoc{
			TeamID:     string(s.TeamID),
			Round:      s.Round,
			Stage:      string(s.Stage),
			RobotScore: s.RobotScore,
			GPRating:   s.GPRating,
		})
	}
	return doc
}
