package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the DDL for every table the API owns, in dependency order.
// Each statement is idempotent so Migrate can run on every start.
// There are no foreign keys: referential cleanup on tour deletion is done by
// the tour repository inside a single transaction.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tours (
		id           CHAR(36)     NOT NULL PRIMARY KEY,
		name         VARCHAR(50)  NOT NULL,
		description  VARCHAR(500) NOT NULL,
		price        DOUBLE       NOT NULL,
		location     VARCHAR(255) NOT NULL,
		image_url    VARCHAR(512) NOT NULL DEFAULT 'no-photo.jpg',
		max_capacity INT          NOT NULL,
		start_date   DATETIME(3)  NULL,
		created_at   DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		KEY idx_tours_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_wishlist (
		seq      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id  CHAR(36) NOT NULL,
		tour_id  CHAR(36) NOT NULL,
		UNIQUE KEY uq_wishlist_user_tour (user_id, tour_id),
		KEY idx_wishlist_tour (tour_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           CHAR(36)    NOT NULL PRIMARY KEY,
		user_id      CHAR(36)    NOT NULL,
		tour_id      CHAR(36)    NOT NULL,
		head_count   INT         NOT NULL,
		total_price  DOUBLE      NOT NULL,
		booking_date DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_tour (tour_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comments (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		tour_id    CHAR(36)    NOT NULL,
		text       TEXT        NOT NULL,
		rating     TINYINT     NOT NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		KEY idx_comments_tour (tour_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
