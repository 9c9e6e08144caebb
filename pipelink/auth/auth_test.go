package auth

import (
	"errors"
	"testing"
)

type fakeResolver struct {
	self    string
	selfErr error
	peer    string
	peerErr error
}

func (f fakeResolver) CurrentPath() (string, error) { return f.self, f.selfErr }

func (f fakeResolver) PathOfPID(pid int) (string, error) { return f.peer, f.peerErr }

func TestVerifySamePath(t *testing.T) {
	v := Verifier{Resolver: fakeResolver{self: "/usr/bin/app", peer: "/usr/bin/app"}}
	path, err := v.Verify(1234)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if path != "/usr/bin/app" {
		t.Fatalf("verified path %q", path)
	}
}

func TestVerifyMismatch(t *testing.T) {
	v := Verifier{Resolver: fakeResolver{self: "/usr/bin/app", peer: "/usr/bin/impostor"}}
	if _, err := v.Verify(1234); !errors.Is(err, ErrPathMismatch) {
		t.Fatalf("Verify: got %v, want ErrPathMismatch", err)
	}
}

func TestVerifyResolutionFailureFailsClosed(t *testing.T) {
	boom := errors.New("boom")

	v := Verifier{Resolver: fakeResolver{selfErr: boom}}
	if _, err := v.Verify(1); !errors.Is(err, boom) {
		t.Fatalf("Verify with own-path failure: got %v", err)
	}

	v = Verifier{Resolver: fakeResolver{self: "/usr/bin/app", peerErr: boom}}
	if _, err := v.Verify(1); !errors.Is(err, boom) {
		t.Fatalf("Verify with peer-path failure: got %v", err)
	}
}

func TestPathsEqual(t *testing.T) {
	if !pathsEqual(`C:\Apps\Tool.exe`, `c:\apps\tool.exe`, true) {
		t.Fatalf("case-insensitive compare should match")
	}
	if pathsEqual("/usr/bin/App", "/usr/bin/app", false) {
		t.Fatalf("case-sensitive compare should not match")
	}
	if !pathsEqual("/usr/bin/app", "/usr/bin/app", false) {
		t.Fatalf("identical paths should match")
	}
}
