// Copyright 2025 Veldt Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Timestamps are stored
// as microsecond Unix time. The wire format is fixed; any change requires
// bumping the version byte in the index artifact header and the corpus
// store key prefixes.
var (
	IDMUS       = idMUS{}
	VectorMUS   = vectorMUS{}
	SectionMUS  = sectionMUS{}
	DocumentMUS = documentMUS{}
	ChunkMUS    = chunkMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

type sectionMUS struct{}

func (sectionMUS) Marshal(v Section, bs []byte) (n int) {
	n = ord.String.Marshal(v.Heading, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(v.Depth, bs[n:])
	return n
}

func (sectionMUS) Unmarshal(bs []byte) (v Section, n int, err error) {
	var n1 int
	v.Heading, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return Section{}, n, err
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Section{}, n, err
	}
	v.Depth, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Section{}, n, err
	}
	return v, n, nil
}

func (sectionMUS) Size(v Section) (size int) {
	size = ord.String.Size(v.Heading)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(v.Depth)
	return size
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += varint.Int.Marshal(len(v.Sections), bs[n:])
	for _, s := range v.Sections {
		n += SectionMUS.Marshal(s, bs[n:])
	}
	n += timeMUS{}.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS{}.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return Document{}, n, err
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Document{}, n, err
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Document{}, n, err
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Document{}, n, err
	}
	v.Sections = make([]Section, count)
	for i := 0; i < count; i++ {
		v.Sections[i], n1, err = SectionMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return Document{}, n, err
		}
	}
	v.InsertedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Document{}, n, err
	}
	v.UpdatedAt, n1, err = timeMUS{}.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Document{}, n, err
	}
	return v, n, nil
}

func (documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.URL)
	size += varint.Int.Size(len(v.Sections))
	for _, s := range v.Sections {
		size += SectionMUS.Size(s)
	}
	size += timeMUS{}.Size(v.InsertedAt)
	size += timeMUS{}.Size(v.UpdatedAt)
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ParentId, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(int(v.Level), bs[n:])
	n += varint.Int.Marshal(int(v.Type), bs[n:])
	n += ord.String.Marshal(v.SourceTitle, bs[n:])
	n += ord.String.Marshal(v.SourceURL, bs[n:])
	n += ord.String.Marshal(v.SectionHeading, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return Chunk{}, n, err
	}
	v.ParentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	var level int
	level, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	v.Level = ChunkLevel(level)
	var chunkType int
	chunkType, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	v.Type = ChunkType(chunkType)
	v.SourceTitle, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	v.SourceURL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	v.SectionHeading, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return Chunk{}, n, err
	}
	return v, n, nil
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ParentId)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(int(v.Level))
	size += varint.Int.Size(int(v.Type))
	size += ord.String.Size(v.SourceTitle)
	size += ord.String.Size(v.SourceURL)
	size += ord.String.Size(v.SectionHeading)
	return size
}
