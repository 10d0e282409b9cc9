package extractor

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
)

// MAPI property IDs carried as __substg1.0_<id><type> streams.
const (
	msgPropSubject     = "0037"
	msgPropSenderName  = "0C1A"
	msgPropSenderEmail = "0C1F"
	msgPropBody        = "1000"
)

// PidTagClientSubmitTime in the fixed-length __properties stream.
const msgTagSubmitTime = 0x00390040

// MSGExtractor extracts Outlook .msg messages. The container is an OLE
// compound file whose top-level streams carry MAPI properties; subject,
// sender, date, and body are formatted the same way as EML output.
// Recipient and attachment substorages are not descended into.
type MSGExtractor struct{}

func (e *MSGExtractor) SupportedFormats() []string { return []string{"msg"} }

func (e *MSGExtractor) Extract(ctx context.Context, content []byte, info FileInfo) (*Document, error) {
	cfb, err := mscfb.New(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: not an OLE compound file: %v", ErrDecode, err)
	}

	props := make(map[string]string)
	var date time.Time
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		if len(entry.Path) != 0 {
			continue
		}
		switch {
		case strings.HasPrefix(entry.Name, "__substg1.0_"):
			id, typ, ok := msgStreamTag(entry.Name)
			if !ok {
				continue
			}
			data, err := io.ReadAll(io.LimitReader(entry, entry.Size))
			if err != nil {
				slog.Warn("failed to read MSG property stream", "stream", entry.Name, "error", err)
				continue
			}
			switch typ {
			case "001F": // PT_UNICODE
				props[id] = decodeUTF16LE(data)
			case "001E": // PT_STRING8
				props[id] = strings.ToValidUTF8(string(data), "�")
			}
		case entry.Name == "__properties_version1.0":
			data, err := io.ReadAll(io.LimitReader(entry, entry.Size))
			if err == nil {
				date = msgSubmitTime(data)
			}
		}
	}

	subject := strings.TrimSpace(props[msgPropSubject])
	sender := strings.TrimSpace(props[msgPropSenderName])
	if sender == "" {
		sender = strings.TrimSpace(props[msgPropSenderEmail])
	}
	body := strings.TrimSpace(props[msgPropBody])

	var dateStr string
	if !date.IsZero() {
		dateStr = date.Format(time.RFC1123Z)
	}

	var headerLines []string
	if subject != "" {
		headerLines = append(headerLines, "Subject: "+subject)
	}
	if sender != "" {
		headerLines = append(headerLines, "From: "+sender)
	}
	if dateStr != "" {
		headerLines = append(headerLines, "Date: "+dateStr)
	}

	headerBlock := strings.Join(headerLines, "\n")
	var full string
	switch {
	case headerBlock != "" && body != "":
		full = headerBlock + "\n\n" + body
	case headerBlock != "":
		full = headerBlock
	default:
		full = body
	}

	metadata := make(map[string]string)
	if subject != "" {
		metadata[MetaSubject] = subject
	}
	if sender != "" {
		metadata[MetaFrom] = sender
	}
	if dateStr != "" {
		metadata[MetaDate] = dateStr
	}

	slog.Debug("parsed MSG message", "chars", len(full), "properties", len(props))
	return &Document{Content: full, Metadata: metadata}, nil
}

// msgStreamTag splits a __substg1.0_XXXXYYYY stream name into its property
// ID and type.
func msgStreamTag(name string) (id, typ string, ok bool) {
	tag := strings.TrimPrefix(name, "__substg1.0_")
	if len(tag) != 8 {
		return "", "", false
	}
	return tag[:4], tag[4:], true
}

// decodeUTF16LE converts a little-endian UTF-16 property value, dropping
// any trailing NUL.
func decodeUTF16LE(data []byte) string {
	u := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		u = append(u, binary.LittleEndian.Uint16(data[i:]))
	}
	return strings.TrimRight(string(utf16.Decode(u)), "\x00")
}

// msgSubmitTime scans the fixed-length property stream for the client
// submit time. The top-level stream has a 32-byte header followed by
// 16-byte records: tag, flags, then an 8-byte value, which for PT_SYSTIME
// is a FILETIME (100ns ticks since 1601-01-01 UTC).
func msgSubmitTime(data []byte) time.Time {
	const headerLen, recordLen = 32, 16
	for off := headerLen; off+recordLen <= len(data); off += recordLen {
		if binary.LittleEndian.Uint32(data[off:]) != msgTagSubmitTime {
			continue
		}
		ticks := binary.LittleEndian.Uint64(data[off+8:])
		secs := int64(ticks/10_000_000) - 11_644_473_600
		nsec := int64(ticks%10_000_000) * 100
		return time.Unix(secs, nsec).UTC()
	}
	return time.Time{}
}
