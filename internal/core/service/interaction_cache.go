package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/internal/pkg/metrics"
)

// Persisted keys of the interaction mirror.
const (
	KeyLikes        = "likes"
	KeySaves        = "saves"
	KeyComments     = "comments"
	KeyShowComments = "showComments"
)

// TokenSource yields the member token used for interaction calls.
type TokenSource interface {
	IsAuthenticated() bool
	Token() string
}

type likeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// InteractionCache mirrors backend-confirmed like/save/comment state per
// entity so views survive a reload without refetching. The mirror is only
// written after the backend confirms an action; counts and comment lists
// always come from the backend.
type InteractionCache struct {
	mu           sync.Mutex
	likes        map[string]likeState
	saves        map[string]bool
	comments     map[string][]domain.Comment
	showComments map[string]bool

	store   ports.KVStore
	backend ports.Backend
	session TokenSource
	log     zerolog.Logger
	busy    *inflight
}

var _ ports.InteractionService = (*InteractionCache)(nil)

func NewInteractionCache(store ports.KVStore, backend ports.Backend, session TokenSource, log zerolog.Logger) *InteractionCache {
	return &InteractionCache{
		likes:        make(map[string]likeState),
		saves:        make(map[string]bool),
		comments:     make(map[string][]domain.Comment),
		showComments: make(map[string]bool),
		store:        store,
		backend:      backend,
		session:      session,
		log:          log,
		busy:         newInflight(),
	}
}

// Load reads the persisted maps. A corrupt map is dropped and removed from
// storage; it never fails the caller.
func (c *InteractionCache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.load(ctx, KeyLikes, &c.likes)
	c.load(ctx, KeySaves, &c.saves)
	c.load(ctx, KeyComments, &c.comments)
	c.load(ctx, KeyShowComments, &c.showComments)

	// A persisted "null" decodes into a nil map.
	for _, key := range []string{KeyLikes, KeySaves, KeyComments, KeyShowComments} {
		if c.isNil(key) {
			c.reset(key)
		}
	}
}

func (c *InteractionCache) isNil(key string) bool {
	switch key {
	case KeyLikes:
		return c.likes == nil
	case KeySaves:
		return c.saves == nil
	case KeyComments:
		return c.comments == nil
	case KeyShowComments:
		return c.showComments == nil
	}
	return false
}

func (c *InteractionCache) load(ctx context.Context, key string, dst any) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("interaction storage unreadable")
		return
	}
	if !found {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("discarding corrupt interaction map")
		c.reset(key)
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			c.log.Warn().Err(delErr).Str("key", key).Msg("failed to remove interaction map")
		}
	}
}

func (c *InteractionCache) reset(key string) {
	switch key {
	case KeyLikes:
		c.likes = make(map[string]likeState)
	case KeySaves:
		c.saves = make(map[string]bool)
	case KeyComments:
		c.comments = make(map[string][]domain.Comment)
	case KeyShowComments:
		c.showComments = make(map[string]bool)
	}
}

// Get returns the mirrored record of entityID, or the empty default.
func (c *InteractionCache) Get(entityID string) domain.InteractionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record(entityID)
}

func (c *InteractionCache) record(id string) domain.InteractionRecord {
	like := c.likes[id]
	comments := make([]domain.Comment, len(c.comments[id]))
	copy(comments, c.comments[id])
	return domain.InteractionRecord{
		Liked:           like.Liked,
		LikeCount:       like.Count,
		Saved:           c.saves[id],
		CommentsVisible: c.showComments[id],
		Comments:        comments,
	}
}

// RecordInteraction merges a confirmed flag into the mirror and persists
// the affected map.
func (c *InteractionCache) RecordInteraction(ctx context.Context, entityID string, kind domain.InteractionKind, value bool) error {
	if !kind.Valid() {
		return fmt.Errorf("record %q: %w", kind, domain.ErrInvalidKind)
	}
	c.setFlag(ctx, entityID, kind, value)
	return nil
}

// setFlag stores a flag of a known kind.
func (c *InteractionCache) setFlag(ctx context.Context, entityID string, kind domain.InteractionKind, value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case domain.KindLike:
		st := c.likes[entityID]
		st.Liked = value
		c.likes[entityID] = st
		c.persist(ctx, KeyLikes, c.likes)
	case domain.KindSave:
		c.saves[entityID] = value
		c.persist(ctx, KeySaves, c.saves)
	case domain.KindCommentsVisible:
		c.showComments[entityID] = value
		c.persist(ctx, KeyShowComments, c.showComments)
	}
}

// Reconcile overwrites mirrored values with the ones the backend reported.
func (c *InteractionCache) Reconcile(ctx context.Context, entityID string, auth domain.Authoritative) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if auth.LikeCount != nil || auth.Liked != nil {
		st := c.likes[entityID]
		if auth.LikeCount != nil {
			st.Count = *auth.LikeCount
		}
		if auth.Liked != nil {
			st.Liked = *auth.Liked
		}
		c.likes[entityID] = st
		c.persist(ctx, KeyLikes, c.likes)
	}
	if auth.Saved != nil {
		c.saves[entityID] = *auth.Saved
		c.persist(ctx, KeySaves, c.saves)
	}
	if auth.ReplaceComments {
		list := make([]domain.Comment, len(auth.Comments))
		copy(list, auth.Comments)
		c.comments[entityID] = list
		c.persist(ctx, KeyComments, c.comments)
	}
}

// ToggleLike flips the like on postID and takes the backend's count.
func (c *InteractionCache) ToggleLike(ctx context.Context, postID string) (rec domain.InteractionRecord, err error) {
	defer observe("like", &err)

	token, release, err := c.begin("like", postID)
	if err != nil {
		return c.Get(postID), err
	}
	defer release()

	res, err := c.backend.ToggleLike(ctx, token, postID)
	if err != nil {
		return c.Get(postID), fmt.Errorf("toggle like %s: %w", postID, err)
	}

	c.Reconcile(ctx, postID, domain.Authoritative{Liked: &res.Liked, LikeCount: &res.LikesCount})
	return c.Get(postID), nil
}

// ToggleSave flips the saved flag on postID.
func (c *InteractionCache) ToggleSave(ctx context.Context, postID string) (rec domain.InteractionRecord, err error) {
	defer observe("save", &err)

	token, release, err := c.begin("save", postID)
	if err != nil {
		return c.Get(postID), err
	}
	defer release()

	saved, err := c.backend.ToggleSave(ctx, token, postID)
	if err != nil {
		return c.Get(postID), fmt.Errorf("toggle save %s: %w", postID, err)
	}

	c.setFlag(ctx, postID, domain.KindSave, saved)
	return c.Get(postID), nil
}

// ToggleComments opens or closes the comment panel of postID. Opening
// fetches the authoritative list first; the panel stays closed if that fails.
func (c *InteractionCache) ToggleComments(ctx context.Context, postID string) (rec domain.InteractionRecord, err error) {
	defer observe("comments_toggle", &err)

	token, release, err := c.begin("comments", postID)
	if err != nil {
		return c.Get(postID), err
	}
	defer release()

	if c.Get(postID).CommentsVisible {
		c.setFlag(ctx, postID, domain.KindCommentsVisible, false)
		return c.Get(postID), nil
	}

	list, err := c.backend.ListComments(ctx, token, postID)
	if err != nil {
		return c.Get(postID), fmt.Errorf("list comments %s: %w", postID, err)
	}

	c.Reconcile(ctx, postID, domain.Authoritative{Comments: list, ReplaceComments: true})
	c.setFlag(ctx, postID, domain.KindCommentsVisible, true)
	return c.Get(postID), nil
}

// RefreshComments replaces the mirrored comment list with the backend's.
func (c *InteractionCache) RefreshComments(ctx context.Context, postID string) (rec domain.InteractionRecord, err error) {
	defer observe("comments_refresh", &err)

	token, release, err := c.begin("comments", postID)
	if err != nil {
		return c.Get(postID), err
	}
	defer release()

	list, err := c.backend.ListComments(ctx, token, postID)
	if err != nil {
		return c.Get(postID), fmt.Errorf("list comments %s: %w", postID, err)
	}

	c.Reconcile(ctx, postID, domain.Authoritative{Comments: list, ReplaceComments: true})
	return c.Get(postID), nil
}

// AddComment posts a comment and appends the stored result to the mirror.
func (c *InteractionCache) AddComment(ctx context.Context, postID, content string) (rec domain.InteractionRecord, err error) {
	defer observe("comment_add", &err)

	token, release, err := c.begin("comment_add", postID)
	if err != nil {
		return c.Get(postID), err
	}
	defer release()

	created, err := c.backend.AddComment(ctx, token, postID, content)
	if err != nil {
		return c.Get(postID), fmt.Errorf("add comment %s: %w", postID, err)
	}

	c.mu.Lock()
	c.comments[postID] = append(c.comments[postID], created)
	c.persist(ctx, KeyComments, c.comments)
	c.mu.Unlock()

	return c.Get(postID), nil
}

// DeleteComment removes commentID once the backend confirms the deletion.
func (c *InteractionCache) DeleteComment(ctx context.Context, postID, commentID string) (rec domain.InteractionRecord, err error) {
	defer observe("comment_delete", &err)

	token, release, err := c.begin("comment_delete:"+commentID, postID)
	if err != nil {
		return c.Get(postID), err
	}
	defer release()

	if err := c.backend.DeleteComment(ctx, token, postID, commentID); err != nil {
		return c.Get(postID), fmt.Errorf("delete comment %s: %w", commentID, err)
	}

	c.mu.Lock()
	kept := make([]domain.Comment, 0, len(c.comments[postID]))
	for _, cm := range c.comments[postID] {
		if cm.ID != commentID {
			kept = append(kept, cm)
		}
	}
	c.comments[postID] = kept
	c.persist(ctx, KeyComments, c.comments)
	c.mu.Unlock()

	return c.Get(postID), nil
}

// begin checks authentication and reserves the in-flight slot of action on id.
func (c *InteractionCache) begin(action, id string) (string, func(), error) {
	if c.session == nil || !c.session.IsAuthenticated() {
		return "", nil, domain.ErrNotAuthenticated
	}
	release, ok := c.busy.acquire(action + ":" + id)
	if !ok {
		return "", nil, fmt.Errorf("%s %s: %w", action, id, domain.ErrBusy)
	}
	return c.session.Token(), release, nil
}

// persist writes one map. Callers hold c.mu. A storage failure only loses
// the mirror across reloads, so it is logged and not returned.
func (c *InteractionCache) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("failed to encode interaction map")
		return
	}
	if err := c.store.Set(ctx, key, string(data)); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to persist interaction map")
	}
}

func observe(action string, err *error) {
	result := "ok"
	switch {
	case *err == nil:
	case isBusy(*err):
		result = "busy"
	default:
		result = "error"
	}
	metrics.InteractionsTotal.WithLabelValues(action, result).Inc()
}
