package image

import (
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketImages = "images"

// ErrNotFound is returned by Load for a name with no saved image.
var ErrNotFound = errors.New("image not found")

// Store keeps named images in a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens, creating if necessary, the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketImages))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores img under name, replacing any prior image, after assigning it
// the next sequence number.
func (s *Store) Save(name string, img *Image) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketImages))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		img.Seq = seq
		img.Format = FormatVersion
		if img.Saved.IsZero() {
			img.Saved = time.Now().UTC()
		}
		data, err := Marshal(img)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), data)
	})
}

// Load returns the image saved under name.
func (s *Store) Load(name string) (img *Image, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketImages)).Get([]byte(name))
		if data == nil {
			return ErrNotFound
		}
		img, err = Unmarshal(data)
		return err
	})
	return img, err
}

// Delete removes the image saved under name; deleting a missing name is not
// an error.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketImages)).Delete([]byte(name))
	})
}

// List returns the names of all saved images in key order.
func (s *Store) List() (names []string, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketImages)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
