package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docrag/internal/assembler"
	"docrag/internal/classifier"
	"docrag/internal/domain"
	"docrag/internal/generator"
	"docrag/internal/indexer"
	"docrag/internal/prompt"
	"docrag/internal/retriever"
	"docrag/internal/topics"
)

// Service wires the query pipeline: classify the query, retrieve scoped
// context, assemble it, build the prompt and generate the answer. Every
// failure mode maps to a spoken answer; AnswerQuery returns an error only
// when its inputs are unusable.
type Service struct {
	classifier *classifier.Classifier
	retriever  *retriever.Retriever
	assembler  *assembler.Assembler
	topics     *topics.Extractor
	prompts    *prompt.Builder
	generator  *generator.Generator
	indexer    *indexer.Indexer
	store      domain.VectorStore
	registry   domain.Registry
	logger     *slog.Logger
}

// Fixed answers for queries the pipeline cannot ground in the document.
const (
	noContextAnswer   = "The document does not contain information about this."
	emptyDocAnswer    = "There is no content available to summarize in this document."
	unavailableAnswer = "I don't have enough information to answer that right now. Please try again."
)

// Chunks scanned for candidate terms on topic and question queries.
const (
	termScrollPage = 100
	termScrollCap  = 400
)

func New(
	cls *classifier.Classifier,
	ret *retriever.Retriever,
	asm *assembler.Assembler,
	ext *topics.Extractor,
	pb *prompt.Builder,
	gen *generator.Generator,
	ix *indexer.Indexer,
	store domain.VectorStore,
	reg domain.Registry,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		classifier: cls,
		retriever:  ret,
		assembler:  asm,
		topics:     ext,
		prompts:    pb,
		generator:  gen,
		indexer:    ix,
		store:      store,
		registry:   reg,
		logger:     logger,
	}
}

// AnswerQuery answers one query against one document. Pipeline failures are
// absorbed into the result: the answer is always speakable and the Failure
// field records which stage gave up, if any.
func (s *Service) AnswerQuery(ctx context.Context, query, documentID, collection string, history []domain.ConversationTurn) (domain.QueryResult, error) {
	if query == "" {
		return domain.QueryResult{}, errors.New("empty query")
	}
	if documentID == "" {
		return domain.QueryResult{}, errors.New("no document selected")
	}

	cmd := s.classifier.Classify(query)
	s.logger.Debug("query classified", "intent", cmd.Intent.String(), "limit", cmd.Limit)

	hits, err := s.retriever.Retrieve(ctx, collection, cmd.RetrievalQuery, documentID, cmd.Limit)
	if err != nil {
		switch {
		case errors.Is(err, retriever.ErrEmbedding):
			return domain.QueryResult{Answer: unavailableAnswer, Failure: domain.FailureEmbedding}, nil
		default:
			return domain.QueryResult{Answer: unavailableAnswer, Failure: domain.FailureRetrieval}, nil
		}
	}
	if len(hits) == 0 {
		answer := noContextAnswer
		if cmd.Intent == domain.IntentSummary {
			answer = emptyDocAnswer
		}
		return domain.QueryResult{Answer: answer}, nil
	}

	contextText, sources := s.assembler.Assemble(hits)

	var terms []string
	if needsTerms(cmd.Intent) {
		terms = s.candidateTerms(ctx, collection, documentID)
	}

	p := s.prompts.Build(cmd, contextText, history, query, terms)
	answer, err := s.generator.Respond(ctx, p, cmd.Intent)
	if err != nil {
		return domain.QueryResult{Answer: generator.Apology, Failure: domain.FailureGeneration}, nil
	}
	return domain.QueryResult{Answer: answer, Sources: sources}, nil
}

func needsTerms(intent domain.Intent) bool {
	return intent == domain.IntentTopics || intent == domain.IntentExplainTopics || intent == domain.IntentQuestions
}

// candidateTerms scans the document's chunks and extracts frequent terms to
// seed topic and question prompts. Scan failures only cost the term hints.
func (s *Service) candidateTerms(ctx context.Context, collection, documentID string) []string {
	var texts []string
	cursor := ""
	for len(texts) < termScrollCap {
		batch, next, err := s.store.Scroll(ctx, collection, domain.Filter{DocumentID: documentID}, cursor, termScrollPage)
		if err != nil {
			s.logger.Warn("term scan failed", "document", documentID, "err", err)
			return nil
		}
		for _, h := range batch {
			if h.Chunk.ContentType == domain.ContentText {
				texts = append(texts, h.Chunk.Text)
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}
	return s.topics.Extract(texts)
}

// IngestDocument indexes the extracted pages of one document and records it
// in the registry. The returned document carries the generated ID callers
// use for querying and deletion.
func (s *Service) IngestDocument(ctx context.Context, collection, name string, pages []domain.PageContent) (domain.Document, error) {
	if len(pages) == 0 {
		return domain.Document{}, fmt.Errorf("document %s has no pages", name)
	}
	docID := uuid.NewString()
	stats, err := s.indexer.IndexDocument(ctx, collection, docID, name, pages)
	if err != nil {
		return domain.Document{}, fmt.Errorf("index %s: %w", name, err)
	}
	doc := domain.Document{
		ID:         docID,
		Name:       name,
		Collection: collection,
		Pages:      stats.Pages,
		Chunks:     stats.Chunks,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.registry.SaveDocument(ctx, doc); err != nil {
		return domain.Document{}, fmt.Errorf("register %s: %w", name, err)
	}
	return doc, nil
}

// DeleteDocument removes a document's points from the vector store and its
// registry record.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.registry.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByDocument(ctx, doc.Collection, id); err != nil {
		return fmt.Errorf("delete points of %s: %w", id, err)
	}
	return s.registry.DeleteDocument(ctx, id)
}

// ListDocuments returns all registered documents.
func (s *Service) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.registry.ListDocuments(ctx)
}

// ResetCollection drops the collection and deletes every registry record
// pointing at it.
func (s *Service) ResetCollection(ctx context.Context, collection string) error {
	if err := s.store.DropCollection(ctx, collection); err != nil {
		return fmt.Errorf("drop collection %s: %w", collection, err)
	}
	docs, err := s.registry.ListDocuments(ctx)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.Collection != collection {
			continue
		}
		if err := s.registry.DeleteDocument(ctx, doc.ID); err != nil {
			return err
		}
	}
	return nil
}
