package clients

import (
	"context"

	"github.com/DRSN-tech/pocopan-pos/internal/cfg"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

const exportsRuleID = "expire-ledger-exports"

func NewMinIOClient(c *cfg.MinIOCfg) (*minio.Client, error) {
	client, err := minio.New(c.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.MinioRootUser, c.MinioRootPassword, ""),
		Secure: c.MinioUseSSL,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return client, nil
}

// EnsureBucket создаёт бакет выгрузок и правило, удаляющее объекты под prefix
// через c.ExportRetention дней. При нулевом сроке правило не ставится.
func EnsureBucket(ctx context.Context, client *minio.Client, c *cfg.MinIOCfg, prefix string) error {
	exists, err := client.BucketExists(ctx, c.BucketName)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, c.BucketName, minio.MakeBucketOptions{}); err != nil {
			// Бакет мог создать соседний экземпляр
			if resp := minio.ToErrorResponse(err); resp.Code != "BucketAlreadyOwnedByYou" {
				return e.Wrap(whereami.WhereAmI(), err)
			}
		}
	}

	if c.ExportRetention <= 0 {
		return nil
	}

	rules := lifecycle.NewConfiguration()
	rules.Rules = []lifecycle.Rule{{
		ID:         exportsRuleID,
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: prefix + "/"},
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(c.ExportRetention)},
	}}
	if err := client.SetBucketLifecycle(ctx, c.BucketName, rules); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
