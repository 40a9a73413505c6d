package repo

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidshare.local/internal/app/vidshare"
)

type VideosRepo struct {
	db *pgxpool.Pool
}

func NewVideosRepo(db *pgxpool.Pool) *VideosRepo {
	return &VideosRepo{db: db}
}

type NewVideo struct {
	OwnerID      int64
	FileName     string
	FileURL      string
	FileSize     int64
	ThumbnailURL string
}

// Save records upload metadata after the client has pushed bytes to object
// storage. Only the file URL is mandatory; the rest gets defaults.
func (r *VideosRepo) Save(ctx context.Context, v NewVideo) (vidshare.Video, error) {
	if strings.TrimSpace(v.FileName) == "" {
		v.FileName = "Untitled Video"
	}

	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	var createdAt time.Time
	if err := r.db.QueryRow(dbctx,
		`INSERT INTO videos (owner_id, file_name, file_url, file_size, thumbnail_url)
		 VALUES ($1,$2,$3,$4,NULLIF($5,'')) RETURNING id, created_at`,
		v.OwnerID, v.FileName, v.FileURL, v.FileSize, v.ThumbnailURL,
	).Scan(&id, &createdAt); err != nil {
		slog.Error(err.Error())
		return vidshare.Video{}, err
	}

	return vidshare.Video{
		ID:           id,
		OwnerID:      v.OwnerID,
		FileName:     v.FileName,
		FileURL:      v.FileURL,
		FileSize:     v.FileSize,
		ThumbnailURL: v.ThumbnailURL,
		CreatedAt:    createdAt,
	}, nil
}

// FindOwned resolves a video only when it exists AND belongs to ownerID; both
// failure modes collapse into ErrVideoNotFound on purpose.
func (r *VideosRepo) FindOwned(ctx context.Context, videoID, ownerID int64) (vidshare.Video, error) {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var v vidshare.Video
	if err := r.db.QueryRow(dbctx,
		`SELECT id, owner_id, file_name, file_url, file_size, COALESCE(thumbnail_url,''), created_at
		 FROM videos WHERE id = $1 AND owner_id = $2`, videoID, ownerID,
	).Scan(&v.ID, &v.OwnerID, &v.FileName, &v.FileURL, &v.FileSize, &v.ThumbnailURL, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vidshare.Video{}, vidshare.ErrVideoNotFound
		}
		slog.Error(err.Error())
		return vidshare.Video{}, err
	}
	return v, nil
}

func (r *VideosRepo) ListByOwner(ctx context.Context, ownerID int64) ([]vidshare.Video, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx,
		`SELECT id, owner_id, file_name, file_url, file_size, COALESCE(thumbnail_url,''), created_at
		 FROM videos WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []vidshare.Video
	for rows.Next() {
		var v vidshare.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.FileName, &v.FileURL, &v.FileSize, &v.ThumbnailURL, &v.CreatedAt); err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return result, nil
}
