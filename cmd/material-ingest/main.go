// Command material-ingest loads PDF education materials into the database.
//
// Usage:
//
//	material-ingest -dir ./materials [-section-size 4000]
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"stories-platform-api/config"
	"stories-platform-api/services"
)

func main() {
	dir := flag.String("dir", "", "directory containing PDF files to ingest")
	sectionSize := flag.Int("section-size", 0, "approximate characters per section (default 4000)")
	flag.Parse()

	if *dir == "" {
		log.Fatal("usage: material-ingest -dir <path> [-section-size n]")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	ingestor := &services.MaterialIngestor{
		DB:          config.DB,
		SectionSize: *sectionSize,
	}

	stats, err := ingestor.IngestDir(*dir)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	log.Printf("done: %d files seen, %d skipped (already ingested), %d sections written",
		stats.FilesSeen, stats.FilesSkipped, stats.Sections)
}
