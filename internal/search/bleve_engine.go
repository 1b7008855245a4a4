package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/library"
	"github.com/pders01/newsroom/internal/storage"
)

// DocumentSource returns the current library document.
type DocumentSource func() *storage.Settings

// BleveIndex keeps a full-text index of saved articles in sync with the
// library.
type BleveIndex struct {
	idx    bleve.Index
	source DocumentSource
}

// NewBleveIndex opens or creates the index at indexPath and rebuilds it from
// source. An empty path gives an in-memory index.
func NewBleveIndex(indexPath string, source DocumentSource) (*BleveIndex, error) {
	var idx bleve.Index
	var err error

	if indexPath == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("creating index directory: %w", mkErr)
		}
		idx, err = bleve.Open(indexPath)
		if err != nil {
			idx, err = bleve.New(indexPath, buildIndexMapping())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening search index: %w", err)
	}

	b := &BleveIndex{idx: idx, source: source}
	if err := b.Reindex(); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return b, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	summary := bleve.NewTextFieldMapping()
	summary.Analyzer = standard.Name
	summary.Store = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	folderID := bleve.NewTextFieldMapping()
	folderID.Analyzer = keyword.Name
	folderID.Store = true

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	stored.Store = true

	savedAt := bleve.NewDateTimeFieldMapping()
	savedAt.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("summary", summary)
	dm.AddFieldMappingsAt("url", url)
	dm.AddFieldMappingsAt("folder_id", folderID)
	dm.AddFieldMappingsAt("article_id", stored)
	dm.AddFieldMappingsAt("image", stored)
	dm.AddFieldMappingsAt("saved_at", savedAt)

	im.DefaultMapping = dm
	return im
}

func docID(folderID string, articleID int64) string {
	return "saved:" + folderID + ":" + strconv.FormatInt(articleID, 10)
}

func document(a storage.SavedArticle) map[string]any {
	return map[string]any{
		"title":      a.Title,
		"summary":    a.Summary,
		"url":        a.URL,
		"image":      a.Image,
		"folder_id":  a.FolderID,
		"article_id": strconv.FormatInt(a.ID, 10),
		"saved_at":   a.SavedAt,
	}
}

// Reindex drops every document and indexes the library from scratch.
func (b *BleveIndex) Reindex() error {
	existing, err := b.allIDs()
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}
	if b.source != nil {
		if doc := b.source(); doc != nil {
			for folderID, bucket := range doc.SavedNews {
				for _, a := range bucket {
					a.FolderID = folderID
					if err := batch.Index(docID(folderID, a.ID), document(a)); err != nil {
						return err
					}
				}
			}
		}
	}
	return b.idx.Batch(batch)
}

func (b *BleveIndex) allIDs() ([]string, error) {
	var ids []string
	const size = 1000
	for from := 0; ; from += size {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), size, from, false)
		res, err := b.idx.Search(req)
		if err != nil {
			return nil, err
		}
		for _, h := range res.Hits {
			ids = append(ids, h.ID)
		}
		if len(res.Hits) < size {
			return ids, nil
		}
	}
}

// OnLibraryChanged keeps the index in step with saves and removals.
func (b *BleveIndex) OnLibraryChanged(c library.Change) {
	var err error
	switch c.Kind {
	case library.ArticleSaved:
		batch := b.idx.NewBatch()
		for _, a := range c.Articles {
			if err = batch.Index(docID(c.FolderID, a.ID), document(a)); err != nil {
				break
			}
		}
		if err == nil {
			err = b.idx.Batch(batch)
		}
	case library.ArticleRemoved, library.FolderDeleted:
		batch := b.idx.NewBatch()
		for _, a := range c.Articles {
			batch.Delete(docID(c.FolderID, a.ID))
		}
		err = b.idx.Batch(batch)
	case library.Replaced:
		err = b.Reindex()
	}
	if err != nil {
		debuglog.WithFields(map[string]interface{}{"change": c.Kind.String()}).Warnf("search index update failed: %v", err)
	}
}

// Search runs an OR of per-term match and prefix queries, title weighted
// above summary above URL.
func (b *BleveIndex) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	boosts := []struct {
		field  string
		match  float64
		prefix float64
	}{
		{"title", 4.0, 3.5},
		{"summary", 2.0, 1.8},
		{"url", 0.5, 0.3},
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range boosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.field)
			mq.SetBoost(f.match)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.field)
			pq.SetBoost(f.prefix)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "summary", "url", "image", "folder_id", "article_id", "saved_at"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		a := storage.SavedArticle{
			Title:    stringField(h.Fields, "title"),
			Summary:  stringField(h.Fields, "summary"),
			URL:      stringField(h.Fields, "url"),
			Image:    stringField(h.Fields, "image"),
			FolderID: stringField(h.Fields, "folder_id"),
		}
		a.ID, _ = strconv.ParseInt(stringField(h.Fields, "article_id"), 10, 64)
		if ts, perr := time.Parse(time.RFC3339, stringField(h.Fields, "saved_at")); perr == nil {
			a.SavedAt = ts
		}
		out = append(out, &Result{Article: a, Score: h.Score})
	}
	return out, nil
}

func stringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// DocCount reports total documents in the index.
func (b *BleveIndex) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *BleveIndex) Close() error {
	return b.idx.Close()
}
