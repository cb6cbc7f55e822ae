package submit

import (
	"github.com/google/uuid"

	"indexnow-go/pkg/keys"
)

// MaxBatchSize is the protocol-mandated ceiling for URLs per request.
const MaxBatchSize = 10000

// Batch is one bounded group of URLs submitted to every engine in a single
// request. Immutable once constructed.
type Batch struct {
	ID   string
	Host string
	Key  keys.Key
	URLs []string
}

// payload is the IndexNow wire format.
type payload struct {
	Host    string   `json:"host"`
	Key     string   `json:"key"`
	URLList []string `json:"urlList"`
}

// Chunk partitions urls into consecutive batches of at most batchSize,
// hard-capped at MaxBatchSize regardless of configuration.
func Chunk(host string, key keys.Key, urls []string, batchSize int) []Batch {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	if len(urls) == 0 {
		return nil
	}

	batches := make([]Batch, 0, (len(urls)+batchSize-1)/batchSize)
	for start := 0; start < len(urls); start += batchSize {
		end := start + batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batches = append(batches, Batch{
			ID:   uuid.NewString(),
			Host: host,
			Key:  key,
			URLs: urls[start:end],
		})
	}
	return batches
}
