package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-checkout/internal/domain/order"
)

// Lister is the part of the order service the exporter needs.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]order.Order, error)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

type exporter struct {
	orders      Lister
	dir         string
	concurrency int
}

func (e *exporter) run(ctx context.Context, userIDs []string) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	g, ctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		g.Go(func() error {
			n, err := e.exportUser(ctx, id)
			if err != nil {
				return errors.Wrapf(err, "export user %s", id)
			}
			slog.Info("exported orders", slog.String("user_id", id), slog.Int("orders", n))
			return nil
		})
	}
	return g.Wait()
}

// exportUser writes the user's orders to orders-<user>-<hash>.jsonl.gz. The file
// is written under a temporary name and renamed once complete.
func (e *exporter) exportUser(ctx context.Context, userID string) (int, error) {
	orders, err := e.orders.ListByUser(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "list orders")
	}

	path := filepath.Join(e.dir, fileName(userID))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return 0, errors.Wrap(err, "create file")
	}
	defer func() { _ = os.Remove(tmp) }()

	gz := pgzip.NewWriter(f)
	var enc jx.Encoder
	for i := range orders {
		enc.Reset()
		encodeOrder(&enc, &orders[i])
		if _, err := gz.Write(append(enc.Bytes(), '\n')); err != nil {
			_ = f.Close()
			return 0, errors.Wrap(err, "write order")
		}
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		return 0, errors.Wrap(err, "close gzip")
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "close file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, errors.Wrap(err, "rename file")
	}
	return len(orders), nil
}

// fileName derives a file name from userID. The readable part is
// sanitized; the hash suffix keeps ids that sanitize alike apart.
func fileName(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return fmt.Sprintf("orders-%s-%s.jsonl.gz",
		unsafeFileChars.ReplaceAllString(userID, "_"),
		hex.EncodeToString(sum[:4]),
	)
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("user_id")
	e.Str(o.UserID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("total_amount")
	e.Str(o.TotalAmount.StringFixed(2))
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339))

	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		if it.Size != "" {
			e.FieldStart("size")
			e.Str(it.Size)
		}
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("shipping_city")
	e.Str(o.ShippingAddress.City)
	e.FieldStart("payment_method")
	e.Str(o.PaymentInfo.Method)
	e.ObjEnd()
}
