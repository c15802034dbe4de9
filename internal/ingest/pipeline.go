package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/config"
	"github.com/hyperjump/toshokan/internal/extract"
	"github.com/hyperjump/toshokan/internal/models"
)

// Store is the persistence surface the pipeline writes to.
type Store interface {
	// Sources returns the set of indexed source basenames; empty when no
	// index has ever been persisted.
	Sources(ctx context.Context) (map[string]struct{}, error)
	// Append creates or extends the index with chunks and persists it
	// synchronously before returning.
	Append(ctx context.Context, chunks []*models.Chunk) error
}

// Pipeline orchestrates extraction, chunking, duplicate filtering, and
// batched writes to the index store.
type Pipeline struct {
	store       Store
	registry    *extract.Registry
	splitter    Splitter
	batchSize   int
	maxFileSize int64
	logger      *zap.Logger // optional; when set, logs per-file progress
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for debug output (file processed, batch flushed, etc.).
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithSplitter replaces the default character-window chunker.
func WithSplitter(s Splitter) PipelineOption {
	return func(p *Pipeline) { p.splitter = s }
}

// NewPipeline creates a pipeline writing to store. Chunk size, overlap, batch
// size, and the file size limit come from cfg.
func NewPipeline(store Store, registry *extract.Registry, cfg *config.IngestConfig, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:       store,
		registry:    registry,
		splitter:    NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		batchSize:   cfg.BatchSize,
		maxFileSize: cfg.MaxFileSizeBytes(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestFile reads the file at path and indexes it. Returns the number of
// chunks added. The index is persisted before a successful return.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	sf := models.NewSourceFile(path)
	if !p.registry.Supports(sf.Ext) {
		return 0, errUnsupportedFormat(sf.Ext, p.registry.Supported())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, errExtraction(sf.Name, err)
	}
	return p.ingest(ctx, sf.Name, content)
}

// IngestBytes indexes an in-memory payload under filename. This is the server
// API path, so the file size limit applies here.
func (p *Pipeline) IngestBytes(ctx context.Context, filename string, content []byte) (int, error) {
	sf := models.NewSourceFile(filename)
	if !p.registry.Supports(sf.Ext) {
		return 0, errUnsupportedFormat(sf.Ext, p.registry.Supported())
	}
	if int64(len(content)) > p.maxFileSize {
		return 0, errFileTooLarge(sf.Name, int64(len(content)), p.maxFileSize)
	}
	return p.ingest(ctx, sf.Name, content)
}

// IngestBase64 decodes a base64 payload and indexes it under filename.
func (p *Pipeline) IngestBase64(ctx context.Context, filename, contentBase64 string) (int, error) {
	content, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return 0, errInvalidBase64(filename, err)
	}
	return p.IngestBytes(ctx, filename, content)
}

func (p *Pipeline) ingest(ctx context.Context, name string, content []byte) (int, error) {
	segments, err := p.registry.Extract(content, name)
	if err != nil {
		return 0, errExtraction(name, err)
	}
	if len(segments) == 0 {
		return 0, errEmptyDocument(name)
	}
	chunks := p.splitter.Split(segments)
	if len(chunks) == 0 {
		return 0, errEmptyDocument(name)
	}
	stampSource(chunks, name)
	if err := p.store.Append(ctx, chunks); err != nil {
		return 0, errPersistence(err)
	}
	if p.logger != nil {
		p.logger.Debug("file ingested", zap.String("source", name), zap.Int("chunks", len(chunks)))
	}
	return len(chunks), nil
}

// IngestFolder indexes every supported file directly under folder. Files
// already indexed are skipped. A failing file is recorded and the run
// continues; a failing flush halts the run, and the returned report then
// counts only the files and chunks durably written before the failing batch.
func (p *Pipeline) IngestFolder(ctx context.Context, folder string) (*models.FolderReport, error) {
	report := &models.FolderReport{}
	candidates, err := ListFolder(folder, p.registry.Supports)
	if err != nil {
		return report, err
	}
	if len(candidates) == 0 {
		return report, nil
	}
	indexed, err := p.store.Sources(ctx)
	if err != nil {
		return report, errPersistence(err)
	}
	toProcess, skipped := Partition(indexed, candidates)
	report.SkippedFiles = skipped
	if p.logger != nil {
		p.logger.Info("folder ingestion starting",
			zap.String("folder", folder),
			zap.Int("files", len(toProcess)),
			zap.Int("skipped", len(skipped)),
		)
	}

	var batch []*models.Chunk
	processed := 0
	batchFiles := 0
	for i, f := range toProcess {
		if p.logger != nil {
			p.logger.Debug("processing file",
				zap.Int("n", i+1),
				zap.Int("total", len(toProcess)),
				zap.String("source", f.Name),
			)
		}
		chunks, err := p.prepare(f)
		if err != nil {
			report.FailedFiles = append(report.FailedFiles, models.FileFailure{
				Filename: f.Name,
				Reason:   failureReason(err),
			})
			if p.logger != nil {
				p.logger.Warn("file failed", zap.String("source", f.Name), zap.Error(err))
			}
		} else {
			batch = append(batch, chunks...)
			processed++
			batchFiles++
		}
		// Flush on a full batch of successes, and always after the last
		// candidate so a trailing partial batch is never dropped.
		if processed > 0 && (processed%p.batchSize == 0 || i == len(toProcess)-1) {
			if len(batch) == 0 {
				continue
			}
			if err := p.store.Append(ctx, batch); err != nil {
				report.ProcessedFiles = processed - batchFiles
				return report, errPersistence(err)
			}
			report.BatchesWritten++
			report.ChunksWritten += len(batch)
			if p.logger != nil {
				p.logger.Info("batch flushed",
					zap.Int("batch", report.BatchesWritten),
					zap.Int("chunks", len(batch)),
					zap.Int("total_chunks", report.ChunksWritten),
				)
			}
			batch = nil
			batchFiles = 0
		}
	}
	report.ProcessedFiles = processed
	return report, nil
}

// prepare extracts and chunks one file without touching the store.
func (p *Pipeline) prepare(f models.SourceFile) ([]*models.Chunk, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errExtraction(f.Name, err)
	}
	segments, err := p.registry.Extract(content, f.Name)
	if err != nil {
		return nil, errExtraction(f.Name, err)
	}
	if len(segments) == 0 {
		return nil, errEmptyDocument(f.Name)
	}
	chunks := p.splitter.Split(segments)
	if len(chunks) == 0 {
		return nil, errEmptyDocument(f.Name)
	}
	stampSource(chunks, f.Name)
	return chunks, nil
}

// stampSource overwrites chunk attribution with the canonical basename.
// Duplicate detection across re-runs depends on this never being a full path.
func stampSource(chunks []*models.Chunk, name string) {
	for _, c := range chunks {
		c.Meta.Source = name
	}
}

func failureReason(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Reason()
	}
	return err.Error()
}
