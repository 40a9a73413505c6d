package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidshare.local/internal/app/vidshare"
	"vidshare.local/internal/app/vidshare/cache"
)

type LinksRepo struct {
	db    *pgxpool.Pool
	cache *cache.LinkCache
	bloom *cache.BloomFilter
}

func NewLinksRepo(db *pgxpool.Pool, linkCache *cache.LinkCache, bloom *cache.BloomFilter) *LinksRepo {
	return &LinksRepo{
		db:    db,
		cache: linkCache,
		bloom: bloom,
	}
}

// Create persists one new link with zeroed counters and mints its public
// code from the row id inside the same transaction.
func (r *LinksRepo) Create(ctx context.Context, link vidshare.NewLink) (vidshare.ShareableLink, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.Begin(dbctx)
	if err != nil {
		slog.Error(err.Error())
		return vidshare.ShareableLink{}, err
	}
	defer tx.Rollback(dbctx)

	var id int64
	var createdAt time.Time
	if err := tx.QueryRow(dbctx,
		`INSERT INTO shareable_links (video_id, owner_id, public, access_emails, expires_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		link.VideoID, link.OwnerID, link.Public, link.AccessEmails, link.ExpiresAt,
	).Scan(&id, &createdAt); err != nil {
		slog.Error(err.Error())
		return vidshare.ShareableLink{}, err
	}

	code, err := vidshare.EncodeCode(uint64(id))
	if err != nil {
		slog.Error(err.Error())
		return vidshare.ShareableLink{}, err
	}
	if _, err := tx.Exec(dbctx, `UPDATE shareable_links SET code=$1 WHERE id=$2`, code, id); err != nil {
		slog.Error(err.Error())
		return vidshare.ShareableLink{}, err
	}

	if err := tx.Commit(dbctx); err != nil {
		slog.Error(err.Error())
		return vidshare.ShareableLink{}, err
	}

	if r.bloom != nil {
		r.bloom.Add(code)
	}

	return vidshare.ShareableLink{
		Code:         code,
		VideoID:      link.VideoID,
		OwnerID:      link.OwnerID,
		Public:       link.Public,
		AccessEmails: link.AccessEmails,
		ExpiresAt:    link.ExpiresAt,
		ClickCount:   0,
		CreatedAt:    createdAt,
	}, nil
}

// FindByCode loads a link joined with its video's display fields. Links whose
// video row has disappeared resolve as not found.
func (r *LinksRepo) FindByCode(ctx context.Context, code string) (vidshare.LinkRecord, error) {
	// The filter only vetoes codes it has definitely never seen; it is
	// warmed at startup and fed on every create.
	if r.bloom != nil && !r.bloom.MightExist(code) {
		return vidshare.LinkRecord{}, vidshare.ErrLinkNotFound
	}

	if r.cache != nil {
		rec, found, err := r.cache.Get(ctx, code)
		if err != nil {
			slog.Error("link cache get failed", "err", err, "code", code)
		} else if found {
			if rec == nil {
				return vidshare.LinkRecord{}, vidshare.ErrLinkNotFound
			}
			return *rec, nil
		}
	}

	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var rec vidshare.LinkRecord
	if err := r.db.QueryRow(dbctx,
		`SELECT l.code, l.video_id, l.owner_id, l.public, l.access_emails, l.expires_at,
		        l.click_count, l.last_accessed_at, l.created_at,
		        v.file_name, v.file_url, COALESCE(v.thumbnail_url,'')
		 FROM shareable_links l
		 JOIN videos v ON v.id = l.video_id
		 WHERE l.code = $1`, code,
	).Scan(
		&rec.Code, &rec.VideoID, &rec.OwnerID, &rec.Public, &rec.AccessEmails, &rec.ExpiresAt,
		&rec.ClickCount, &rec.LastAccessedAt, &rec.CreatedAt,
		&rec.FileName, &rec.FileURL, &rec.ThumbnailURL,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if r.cache != nil {
				_ = r.cache.SetNotFound(ctx, code)
			}
			return vidshare.LinkRecord{}, vidshare.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return vidshare.LinkRecord{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, code, rec); err != nil {
			slog.Error("link cache set failed", "err", err, "code", code)
		}
	}
	return rec, nil
}

// RecordAccess bumps the view counter and stamps the access time in a single
// UPDATE so concurrent resolutions never lose increments; last_accessed_at is
// last-write-wins.
func (r *LinksRepo) RecordAccess(ctx context.Context, code string) error {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	tag, err := r.db.Exec(dbctx,
		`UPDATE shareable_links SET click_count = click_count + 1, last_accessed_at = now() WHERE code = $1`, code)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	if tag.RowsAffected() == 0 {
		return vidshare.ErrLinkNotFound
	}
	return nil
}

func (r *LinksRepo) ListByOwner(ctx context.Context, ownerID int64) ([]vidshare.OwnedLink, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx,
		`SELECT l.code, l.video_id, l.owner_id, l.public, l.access_emails, l.expires_at,
		        l.click_count, l.last_accessed_at, l.created_at, v.file_name
		 FROM shareable_links l
		 JOIN videos v ON v.id = l.video_id
		 WHERE l.owner_id = $1
		 ORDER BY l.created_at DESC, l.id DESC`, ownerID)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []vidshare.OwnedLink
	for rows.Next() {
		var item vidshare.OwnedLink
		if err := rows.Scan(
			&item.Code, &item.VideoID, &item.OwnerID, &item.Public, &item.AccessEmails, &item.ExpiresAt,
			&item.ClickCount, &item.LastAccessedAt, &item.CreatedAt, &item.VideoTitle,
		); err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return result, nil
}

// ListCodes feeds the bloom filter at startup.
func (r *LinksRepo) ListCodes(ctx context.Context) ([]string, error) {
	dbctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx, `SELECT code FROM shareable_links WHERE code IS NOT NULL`)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return codes, nil
}
