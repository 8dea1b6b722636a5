/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package filestore persists a whole entity collection to a single file.

The file is encoded with a serializer.Serializer chosen by a file provider
registrar. Save always replaces the file atomically: the snapshot is written
to a temporary file in the same directory and renamed over the target, so a
concurrent Load from this process never sees a partial write.

	store := filestore.New("Data/Product.json", serializer.New[*catalog.Product](serializer.JSON()))
	products, err := store.Load(ctx)

Operations on one Store are serialized through a weighted semaphore of size
one. Acquisition honors ctx; a caller canceled while queued gets a
StorageError of kind KindCanceled and never holds the slot.
*/
package filestore
