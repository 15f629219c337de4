package judge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/evaluate"
)

const (
	// cacheTTL bounds how long a verdict stays valid. Judgments are
	// deterministic enough over an hour that re-asking wastes quota.
	cacheTTL = time.Hour

	cacheCleanupInterval = 10 * time.Minute
)

// CachingJudge wraps another Judge and memoizes verdicts by image content,
// overlay text, platform and audience. Identical re-evaluations (common when
// iterating on thresholds) hit the cache instead of the API.
type CachingJudge struct {
	inner evaluate.Judge
	cache *gocache.Cache
}

// NewCaching wraps inner with an in-memory verdict cache.
func NewCaching(inner evaluate.Judge) *CachingJudge {
	return &CachingJudge{
		inner: inner,
		cache: gocache.New(cacheTTL, cacheCleanupInterval),
	}
}

// Judge returns a cached verdict when one exists for this exact request,
// otherwise delegates to the wrapped judge and stores the result. Errors are
// never cached.
func (c *CachingJudge) Judge(ctx context.Context, req evaluate.JudgeRequest) (*evaluate.Judgment, error) {
	key := cacheKey(req)

	if cached, found := c.cache.Get(key); found {
		if judgment, ok := cached.(*evaluate.Judgment); ok {
			log.Debug().
				Str("key", key[:12]).
				Str("platform", string(req.Platform)).
				Msg("Judgment cache hit")
			return cloneJudgment(judgment), nil
		}
	}

	judgment, err := c.inner.Judge(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, cloneJudgment(judgment), gocache.DefaultExpiration)
	log.Debug().
		Str("key", key[:12]).
		Str("platform", string(req.Platform)).
		Msg("Judgment cached")

	return judgment, nil
}

// cloneJudgment copies a judgment including its slice fields. The cache entry
// and callers must never share backing arrays.
func cloneJudgment(j *evaluate.Judgment) *evaluate.Judgment {
	copied := *j
	if j.Strengths != nil {
		copied.Strengths = append([]string(nil), j.Strengths...)
	}
	if j.Improvements != nil {
		copied.Improvements = append([]string(nil), j.Improvements...)
	}
	return &copied
}

// cacheKey hashes the request fields that influence the verdict.
func cacheKey(req evaluate.JudgeRequest) string {
	h := sha256.New()
	h.Write(req.ImageData)
	h.Write([]byte{0})
	h.Write([]byte(req.Text))
	h.Write([]byte{0})
	h.Write([]byte(req.Platform))
	h.Write([]byte{0})
	h.Write([]byte(req.Audience))
	h.Write([]byte{0})
	h.Write([]byte(req.Brand))
	return hex.EncodeToString(h.Sum(nil))
}
