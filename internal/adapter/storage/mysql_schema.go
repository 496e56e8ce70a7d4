package storage

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		seq         BIGINT       NOT NULL AUTO_INCREMENT,
		id          CHAR(36)     NOT NULL,
		name        VARCHAR(255) NOT NULL,
		price_cents BIGINT       NOT NULL,
		stock       BIGINT       NOT NULL,
		is_active   BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at  DATETIME(6)  NOT NULL,
		updated_at  DATETIME(6)  NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uk_products_seq (seq),
		KEY idx_products_active (is_active),
		CONSTRAINT chk_products_price CHECK (price_cents >= 0),
		CONSTRAINT chk_products_stock CHECK (stock >= 0)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'USER',
		created_at    DATETIME(6)  NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uk_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS orders (
		seq         BIGINT      NOT NULL AUTO_INCREMENT,
		id          CHAR(36)    NOT NULL,
		user_id     CHAR(36)    NOT NULL,
		status      VARCHAR(16) NOT NULL,
		total_cents BIGINT      NOT NULL,
		created_at  DATETIME(6) NOT NULL,
		updated_at  DATETIME(6) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uk_orders_seq (seq),
		KEY idx_orders_user_status (user_id, status),
		KEY idx_orders_status (status)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id               CHAR(36) NOT NULL,
		order_id         CHAR(36) NOT NULL,
		position         INT      NOT NULL,
		product_id       CHAR(36) NOT NULL,
		quantity         BIGINT   NOT NULL,
		unit_price_cents BIGINT   NOT NULL,
		PRIMARY KEY (id),
		KEY idx_order_items_order (order_id, position),
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id),
		CONSTRAINT fk_order_items_product FOREIGN KEY (product_id) REFERENCES products (id),
		CONSTRAINT chk_order_items_quantity CHECK (quantity > 0)
	) ENGINE=InnoDB`,
}

// Migrate creates the tables if they do not exist yet.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
