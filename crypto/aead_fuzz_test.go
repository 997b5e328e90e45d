package crypto

import "testing"

// FuzzSealOpen fuzzes the AEAD round trip: any plaintext under a fixed
// key/nonce/ad must decrypt back to itself, and a mutated ciphertext must
// never decrypt successfully.
func FuzzSealOpen(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add([]byte(""))
	f.Add(make([]byte, 4096))

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		var key [32]byte
		var nonce [12]byte
		ad := []byte("associated")

		ct, err := Seal(key, nonce, ad, plaintext)
		if err != nil {
			t.Fatalf("Seal returned error: %v", err)
		}

		pt, err := Open(key, nonce, ad, ct)
		if err != nil {
			t.Fatalf("Open failed on unmodified ciphertext: %v", err)
		}
		if string(pt) != string(plaintext) {
			t.Fatalf("round trip mismatch: got %q want %q", pt, plaintext)
		}

		if len(ct) > 0 {
			mutated := append([]byte(nil), ct...)
			mutated[0] ^= 0x01
			if _, err := Open(key, nonce, ad, mutated); err == nil {
				t.Fatal("Open accepted a mutated ciphertext")
			}
		}
	})
}
