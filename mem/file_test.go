package mem

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestFileWriteReadAt(t *testing.T) {
	var file File

	data := []byte("hello, world")
	n, err := file.WriteAt(data, 0)
	if err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if n != len(data) {
		t.Fatalf("WriteAt = %d, want %d", n, len(data))
	}

	buf := make([]byte, len(data))
	n, err = file.ReadAt(buf, 0)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if n != len(data) || !bytes.Equal(buf, data) {
		t.Fatalf("ReadAt = %q (%d bytes), want %q", buf[:n], n, data)
	}
}

func TestFileGapIsZeroFilled(t *testing.T) {
	var file File

	if _, err := file.WriteAt([]byte("x"), 100); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if size := file.Size(); size != 101 {
		t.Fatalf("Size = %d, want 101", size)
	}

	buf := make([]byte, 100)
	if _, err := file.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestFileReadPastEnd(t *testing.T) {
	var file File

	file.WriteAt([]byte("abc"), 0)

	buf := make([]byte, 8)
	n, err := file.ReadAt(buf, 0)
	if err != io.EOF {
		t.Fatalf("ReadAt err = %v, want io.EOF", err)
	}
	if n != 3 {
		t.Fatalf("ReadAt n = %d, want 3", n)
	}

	if _, err = file.ReadAt(buf, 100); err != io.EOF {
		t.Fatalf("ReadAt past end = %v, want io.EOF", err)
	}
}

func TestFileSeek(t *testing.T) {
	var file File

	file.WriteAt([]byte("0123456789"), 0)

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if end != 10 {
		t.Fatalf("Seek end = %d, want 10", end)
	}

	pos, err := file.Seek(4, io.SeekStart)
	if err != nil || pos != 4 {
		t.Fatalf("Seek start = %d, %v", pos, err)
	}

	pos, err = file.Seek(2, io.SeekCurrent)
	if err != nil || pos != 6 {
		t.Fatalf("Seek current = %d, %v", pos, err)
	}
}

func TestFileTruncate(t *testing.T) {
	var file File

	file.WriteAt([]byte("0123456789"), 0)

	if err := file.Truncate(4); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if size := file.Size(); size != 4 {
		t.Fatalf("Size = %d, want 4", size)
	}

	if err := file.Truncate(8); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	buf := make([]byte, 8)
	if _, err := file.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(buf, []byte{'0', '1', '2', '3', 0, 0, 0, 0}) {
		t.Fatalf("after grow = %q", buf)
	}
}

func TestFileBackupRestore(t *testing.T) {
	var file File

	file.WriteAt([]byte("precious data"), 0)

	var backup bytes.Buffer
	if _, err := file.WriteTo(&backup); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	file.Close()
	if size := file.Size(); size != 0 {
		t.Fatalf("Size after Close = %d, want 0", size)
	}

	if _, err := file.ReadFrom(&backup); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	buf := make([]byte, 13)
	if _, err := file.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "precious data" {
		t.Fatalf("restored = %q", buf)
	}
}

func TestFileLockExcludes(t *testing.T) {
	var file File

	if err := file.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		file.Lock()
		close(acquired)
		file.Unlock()
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second Lock succeeded while held")
	default:
	}

	file.Unlock()
	<-acquired
}
