package services

import (
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// LinkSigner generates a time-limited access link for an object key.
// Signing has no side effects on shared state, so calls are safe to
// issue concurrently.
type LinkSigner interface {
	SignedLink(key string) (string, error)
}

// StorageSigner signs links against a Google Cloud Storage bucket using
// the V4 scheme. The produced URLs carry X-Goog-Date and X-Goog-Expires
// query parameters, which clients use to compute expiry locally.
type StorageSigner struct {
	client     *storage.Client
	bucketName string
	validity   time.Duration
}

func NewStorageSigner(client *storage.Client, bucketName string, validity time.Duration) *StorageSigner {
	return &StorageSigner{
		client:     client,
		bucketName: bucketName,
		validity:   validity,
	}
}

func (s *StorageSigner) SignedLink(key string) (string, error) {
	return s.client.Bucket(s.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.validity),
	})
}
