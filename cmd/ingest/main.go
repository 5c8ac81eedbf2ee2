package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"ai-docshelper-be/internal/config"
	"ai-docshelper-be/internal/entity"
	"ai-docshelper-be/internal/repository/unitofwork"
	"ai-docshelper-be/pkg/database"
	"ai-docshelper-be/pkg/embedding"
	"ai-docshelper-be/pkg/utils"

	"github.com/fatih/color"
)

// ingest loads a JSONL corpus into the content store, one document per
// line, chunking long documents and embedding each chunk inline so the
// store is searchable as soon as the run finishes.

type document struct {
	Content   string `json:"content"`
	SourceURL string `json:"url"`
}

func main() {
	filePath := flag.String("file", "", "path to JSONL corpus")
	chunkSize := flag.Int("chunk-size", 1500, "chunk size in characters")
	overlap := flag.Int("overlap", 200, "chunk overlap in characters")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Error: -file is required")
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatal("Error: Failed to open corpus:", err)
	}
	defer file.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var records []*entity.ContentRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var doc document
		if err := json.Unmarshal(line, &doc); err != nil {
			color.Red("line %d: skipping malformed document: %v", lineNo, err)
			continue
		}
		if doc.Content == "" {
			continue
		}

		for _, chunk := range utils.SplitText(doc.Content, *chunkSize, *overlap) {
			res, err := embedder.Generate(chunk, embedding.TaskRetrievalDocument)
			if err != nil {
				color.Red("line %d: embedding failed: %v", lineNo, err)
				continue
			}
			records = append(records, &entity.ContentRecord{
				Content:   chunk,
				SourceURL: doc.SourceURL,
				Embedding: res.Embedding.Values,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("Error: Failed reading corpus:", err)
	}

	if len(records) == 0 {
		color.Yellow("Nothing to ingest.")
		return
	}

	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().CreateBulk(ctx, records); err != nil {
		log.Fatal("Error: Failed to insert records:", err)
	}

	color.Green("Ingested %d chunks from %d lines.", len(records), lineNo)
}
