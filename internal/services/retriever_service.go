package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wayfarer/internal/clients"
	"wayfarer/internal/models/plan_models"
	"wayfarer/pkg/utils"
)

const StageRetrieve = "retrieve"

// Near-identical snippets from the same domain are duplicates.
const dedupeOverlap = 0.8

type RetrieverServiceInterface interface {
	Retrieve(ctx context.Context, trip *plan_models.ValidatedTrip) (map[plan_models.Topic][]plan_models.FactSnippet, error)
}

type RetrieverService struct {
	search  clients.SearchClient
	fetcher clients.PageFetcher
	cfg     utils.Config
	logger  *zap.Logger
}

func NewRetrieverService(search clients.SearchClient, fetcher clients.PageFetcher, cfg utils.Config, logger *zap.Logger) RetrieverServiceInterface {
	return &RetrieverService{
		search:  search,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

var topicQueries = map[plan_models.Topic]string{
	plan_models.TopicTransport:  "%s how to get around public transport taxi fares",
	plan_models.TopicStay:       "%s where to stay neighborhoods hotel prices",
	plan_models.TopicAttraction: "%s top attractions tickets opening hours prices",
	plan_models.TopicFood:       "%s must try local food specialties restaurants",
	plan_models.TopicPacking:    "%s weather what to pack travel tips",
}

var topicKeywords = map[plan_models.Topic][]string{
	plan_models.TopicTransport:  {"transport", "bus", "train", "taxi", "metro", "airport", "fare", "ticket", "transfer"},
	plan_models.TopicStay:       {"hotel", "hostel", "stay", "accommodation", "night", "neighborhood", "resort", "booking"},
	plan_models.TopicAttraction: {"attraction", "museum", "fort", "palace", "temple", "entry", "ticket", "tour", "hours", "visit"},
	plan_models.TopicFood:       {"food", "restaurant", "dish", "eat", "cuisine", "street", "breakfast", "dinner", "cafe"},
	plan_models.TopicPacking:    {"pack", "weather", "temperature", "clothing", "rain", "season", "sunscreen", "shoes"},
}

// Retrieve gathers snippets for every (destination, topic) pair
// concurrently. A failing source is logged and skipped; an empty snippet
// set is a valid outcome, so the only error out of here is context
// cancellation.
func (r *RetrieverService) Retrieve(ctx context.Context, trip *plan_models.ValidatedTrip) (map[plan_models.Topic][]plan_models.FactSnippet, error) {
	byTopic := make(map[plan_models.Topic][]plan_models.FactSnippet)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.RetrievalParallelism)

	for _, place := range trip.Places {
		for _, topic := range plan_models.AllTopics() {
			place, topic := place, topic
			g.Go(func() error {
				snippets := r.retrieveOne(gctx, place.Input, topic)
				if len(snippets) == 0 {
					return nil
				}
				mu.Lock()
				byTopic[topic] = append(byTopic[topic], snippets...)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for topic := range byTopic {
		byTopic[topic] = r.rank(byTopic[topic])
	}
	return byTopic, nil
}

// retrieveOne runs one search query and converts its results into scored,
// deduplicated snippets. Every failure path degrades to fewer snippets.
func (r *RetrieverService) retrieveOne(ctx context.Context, destination string, topic plan_models.Topic) []plan_models.FactSnippet {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout())
	defer cancel()

	query := fmt.Sprintf(topicQueries[topic], destination)
	results, err := r.search.Search(sctx, query, r.cfg.SearchResultsPerTopic)
	if err != nil {
		r.logger.Warn("search source skipped",
			zap.String("destination", destination),
			zap.String("topic", string(topic)),
			zap.Error(utils.NewPipelineError(StageRetrieve, utils.ErrRetrievalDegraded, err.Error())))
		return nil
	}

	snippets := make([]plan_models.FactSnippet, 0, len(results))
	for _, res := range results {
		text := res.Snippet
		if body, err := r.fetcher.FetchText(sctx, res.URL); err == nil && body != "" {
			text = body
		} else if err != nil {
			r.logger.Debug("page fetch skipped", zap.String("url", res.URL), zap.Error(err))
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		snippets = append(snippets, plan_models.FactSnippet{
			Topic:       topic,
			Destination: destination,
			SourceURL:   res.URL,
			Title:       res.Title,
			Text:        text,
			Score:       scoreSnippet(text, destination, topicKeywords[topic]),
		})
	}
	return snippets
}

// rank deduplicates, orders by score and caps the per-topic snippet count.
func (r *RetrieverService) rank(snippets []plan_models.FactSnippet) []plan_models.FactSnippet {
	deduped := dedupeSnippets(snippets)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})

	destinations := len(lo.UniqBy(deduped, func(s plan_models.FactSnippet) string { return s.Destination }))
	limit := r.cfg.SnippetsPerTopic * lo.Max([]int{1, destinations})
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

// dedupeSnippets drops snippets from the same domain whose word sets
// overlap almost entirely, keeping the higher-scored one.
func dedupeSnippets(snippets []plan_models.FactSnippet) []plan_models.FactSnippet {
	var kept []plan_models.FactSnippet
	for _, s := range snippets {
		dup := false
		for i, k := range kept {
			if domainOf(s.SourceURL) != domainOf(k.SourceURL) {
				continue
			}
			if wordOverlap(s.Text, k.Text) >= dedupeOverlap {
				if s.Score > k.Score {
					kept[i] = s
				}
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	return kept
}

func scoreSnippet(text, destination string, keywords []string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	score := float64(hits) / float64(len(keywords))

	destTokens := strings.Fields(strings.ToLower(destination))
	destHits := lo.CountBy(destTokens, func(t string) bool {
		return strings.Contains(lower, t)
	})
	if len(destTokens) > 0 {
		score += float64(destHits) / float64(len(destTokens))
	}
	return score
}

func wordOverlap(a, b string) float64 {
	setA := lo.Uniq(strings.Fields(strings.ToLower(a)))
	setB := lo.Uniq(strings.Fields(strings.ToLower(b)))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := len(lo.Intersect(setA, setB))
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
