// Command rank_local runs the ranking pipeline against local files
// without the HTTP layer: a job description file and a directory of CV
// files in, a ranked table out. Useful for smoke-testing a deployment's
// Gemini and Qdrant configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"hragent/cv-ranker/internal/config"
	"hragent/cv-ranker/internal/logger"
	"hragent/cv-ranker/internal/services"
)

func main() {
	jdPath := flag.String("jd", "", "path to the job description file (.pdf or .txt)")
	cvDir := flag.String("cvs", "", "directory containing CV files")
	topN := flag.Int("top", 3, "number of top candidates to print")
	flag.Parse()

	if *jdPath == "" || *cvDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := cfg.Pipeline.Weights.Validate(); err != nil {
		zlog.Fatalw("invalid ranking weights", "error", err)
	}

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbedModel,
		zlog,
	)
	if err != nil {
		zlog.Fatalw("failed to initialize Gemini", "error", err)
	}

	vectorStore, err := services.NewQdrantStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		zlog.Fatalw("failed to initialize Qdrant", "error", err)
	}

	ctx := context.Background()
	if err := vectorStore.EnsureCollection(ctx, cfg.Pipeline.EmbeddingDimension); err != nil {
		zlog.Fatalw("failed to initialize Qdrant collection", "error", err)
	}

	chunker := services.NewTextChunker(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	extractor := services.NewDocumentExtractor(zlog)
	indexer := services.NewVectorIndexer(chunker, geminiService, vectorStore, cfg.Pipeline.UpsertBatchSize, zlog)
	scorer := services.NewSemanticScorer(geminiService, cfg.Pipeline.SemanticMaxChars, zlog)
	analyzer := services.NewAnalysisService(
		geminiService,
		cfg.Pipeline.AnalysisMaxChars,
		cfg.Pipeline.AnalysisTimeout,
		cfg.Pipeline.RetryMaxAttempts,
		zlog,
	)
	engine := services.NewRankingEngine(analyzer, cfg.Pipeline.Weights, zlog)

	sessionManager, err := services.NewSessionManager(cfg.Session.BaseDir, zlog)
	if err != nil {
		zlog.Fatalw("failed to initialize session manager", "error", err)
	}

	jdText, err := extractor.ExtractText(*jdPath)
	if err != nil {
		zlog.Fatalw("failed to read job description", "error", err)
	}

	entries, err := os.ReadDir(*cvDir)
	if err != nil {
		zlog.Fatalw("failed to read CV directory", "error", err)
	}

	var cvPaths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".pdf" || ext == ".txt" {
			cvPaths = append(cvPaths, filepath.Join(*cvDir, entry.Name()))
		}
	}
	if len(cvPaths) == 0 {
		zlog.Fatalw("no CV files found", "dir", *cvDir)
	}

	cvData := extractor.ExtractBatch(cvPaths)
	if len(cvData) == 0 {
		zlog.Fatal("failed to extract text from any CV file")
	}

	sessionID, err := sessionManager.Create()
	if err != nil {
		zlog.Fatalw("failed to create session", "error", err)
	}
	defer func() {
		sessionManager.Cleanup(sessionID)
		if err := indexer.DeleteSession(ctx, sessionID); err != nil {
			zlog.Errorw("failed to delete session vectors", "error", err)
		}
	}()

	if _, err := indexer.IngestJobDescription(ctx, sessionID, jdText); err != nil {
		zlog.Fatalw("failed to ingest job description", "error", err)
	}
	if _, err := indexer.IngestCVs(ctx, sessionID, cvData); err != nil {
		zlog.Fatalw("failed to ingest CVs", "error", err)
	}

	semanticScores := scorer.ScoreAll(ctx, jdText, cvData)

	candidates := make([]services.Candidate, 0, len(cvData))
	for _, path := range cvPaths {
		if text, ok := cvData[path]; ok {
			candidates = append(candidates, services.Candidate{FilePath: path, Text: text})
		}
	}

	ranked := engine.Rank(ctx, jdText, candidates, semanticScores)

	fmt.Printf("\nRanked %d candidates (session %s)\n\n", len(ranked), sessionID)
	for i, score := range engine.Top(ranked, *topN) {
		fmt.Printf("%d. %s  (%.2f)\n", i+1, score.CandidateName, score.MatchScore)
		fmt.Printf("   skills=%.2f experience=%.2f tools=%.2f seniority=%.2f semantic=%.2f\n",
			score.SkillMatchScore, score.ExperienceScore, score.ToolTechScore,
			score.SeniorityScore, score.SemanticScore)
		fmt.Printf("   %s\n\n", score.Explanation)
	}
}
