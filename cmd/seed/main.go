package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/meetingledger/ledger/internal/adapter/repository"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/infrastructure/database"
	"github.com/meetingledger/ledger/pkg/config"
)

const sampleTranscript = `Alice: Welcome everyone, let's get through the release checklist.
Bob: We decided to ship the reporting dashboard behind a feature flag.
Alice: Good. I will prepare the rollout plan by Friday.
Carol: The staging database keeps running out of connections, that is a real risk for launch week.
Bob: Noted. Dave will bump the pool limits before the next deploy.
Dave: Yes, I'll handle that tomorrow.
Alice: Then we are agreed on the flag approach. Thanks all.`

// Seeds one demo account with a few meetings and transcripts so the API has
// data to play with locally. Safe to run repeatedly; every run creates fresh
// rows under a new account.
func main() {
	log.Println("🚀 Seeding demo data...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	ctx := context.Background()
	meetingRepo := repository.NewMeetingRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)

	accountID := uuid.New()
	log.Printf("👤 Demo account: %s", accountID)

	titles := []string{
		"Release planning",
		"Weekly engineering sync",
		"Incident retro: connection pool exhaustion",
	}

	for i, title := range titles {
		startedAt := time.Now().AddDate(0, 0, -7*i)
		meeting := entities.NewMeeting(accountID, title, startedAt)
		if err := meetingRepo.Create(ctx, meeting); err != nil {
			log.Fatalf("Failed to create meeting %q: %v", title, err)
		}

		transcript := entities.NewTranscript(meeting.ID, sampleTranscript)
		if err := transcriptRepo.Create(ctx, transcript); err != nil {
			log.Fatalf("Failed to create transcript for %q: %v", title, err)
		}

		log.Printf("✅ Seeded meeting %q (%s)", title, meeting.ID)
	}

	fmt.Println()
	log.Println("Use the account id above in the X-Account-ID header.")
}
