package runtime

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
)

// Transaction is a list of instructions executed atomically, together with
// the signatures authorizing them.
type Transaction struct {
	Instructions []custody.Instruction
	// Nonce must be above the last nonce of every signer. It is recorded as
	// their sequence when the transaction succeeds.
	Nonce      uint64
	Signatures []Signature
}

// Signature binds a signer identity to its signature over SignBytes.
type Signature struct {
	Pubkey    custody.Pubkey
	Signature crypto.Signature
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(nonce uint64, ixs ...custody.Instruction) *Transaction {
	return &Transaction{Instructions: ixs, Nonce: nonce}
}

type wireMeta struct {
	Pubkey     []byte
	IsSigner   bool
	IsWritable bool
}

type wireInstruction struct {
	ProgramID []byte
	Accounts  []wireMeta
	Data      []byte
}

type wireMessage struct {
	Instructions []wireInstruction
	Nonce        uint64
}

type wireSignature struct {
	Pubkey    []byte
	Signature []byte
}

type wireTransaction struct {
	Message    wireMessage
	Signatures []wireSignature
}

func (tx *Transaction) message() wireMessage {
	msg := wireMessage{Nonce: tx.Nonce}
	for _, ix := range tx.Instructions {
		w := wireInstruction{ProgramID: ix.ProgramID.Bytes(), Data: ix.Data}
		for _, m := range ix.Accounts {
			w.Accounts = append(w.Accounts, wireMeta{
				Pubkey:     m.Pubkey.Bytes(),
				IsSigner:   m.IsSigner,
				IsWritable: m.IsWritable,
			})
		}
		msg.Instructions = append(msg.Instructions, w)
	}
	return msg
}

// SignBytes returns the bytes every signer signs.
func (tx *Transaction) SignBytes() ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(tx.message())
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return raw, nil
}

// Sign appends a signature of every signer. Sign after all instructions were
// added, any later change invalidates the signatures.
func (tx *Transaction) Sign(signers ...crypto.Signer) error {
	msg, err := tx.SignBytes()
	if err != nil {
		return err
	}
	for _, s := range signers {
		sig, err := s.Sign(msg)
		if err != nil {
			return errors.Wrap(err, "sign")
		}
		tx.Signatures = append(tx.Signatures, Signature{Pubkey: s.PublicKey(), Signature: sig})
	}
	return nil
}

// signers verifies all signatures and returns the set of keys that signed.
func (tx *Transaction) signers() (map[custody.Pubkey]bool, error) {
	msg, err := tx.SignBytes()
	if err != nil {
		return nil, err
	}
	res := make(map[custody.Pubkey]bool, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if !crypto.Verify(s.Pubkey, msg, s.Signature) {
			return nil, errors.Wrapf(errors.ErrInvalidSignature, "signer %s", s.Pubkey)
		}
		res[s.Pubkey] = true
	}
	return res, nil
}

// Marshal serializes the signed transaction.
func (tx *Transaction) Marshal() ([]byte, error) {
	w := wireTransaction{Message: tx.message()}
	for _, s := range tx.Signatures {
		w.Signatures = append(w.Signatures, wireSignature{
			Pubkey:    s.Pubkey.Bytes(),
			Signature: append([]byte(nil), s.Signature[:]...),
		})
	}
	raw, err := cdc.MarshalBinaryBare(w)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return raw, nil
}

// UnmarshalTransaction is the inverse of Transaction.Marshal.
func UnmarshalTransaction(raw []byte) (*Transaction, error) {
	var w wireTransaction
	if err := cdc.UnmarshalBinaryBare(raw, &w); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	tx := &Transaction{Nonce: w.Message.Nonce}
	for _, wi := range w.Message.Instructions {
		pid, err := custody.PubkeyFromBytes(wi.ProgramID)
		if err != nil {
			return nil, errors.Wrap(err, "program id")
		}
		ix := custody.Instruction{ProgramID: pid, Data: wi.Data}
		for _, wm := range wi.Accounts {
			key, err := custody.PubkeyFromBytes(wm.Pubkey)
			if err != nil {
				return nil, errors.Wrap(err, "account")
			}
			ix.Accounts = append(ix.Accounts, custody.AccountMeta{
				Pubkey:     key,
				IsSigner:   wm.IsSigner,
				IsWritable: wm.IsWritable,
			})
		}
		tx.Instructions = append(tx.Instructions, ix)
	}
	for _, ws := range w.Signatures {
		key, err := custody.PubkeyFromBytes(ws.Pubkey)
		if err != nil {
			return nil, errors.Wrap(err, "signer")
		}
		if len(ws.Signature) != crypto.SignatureLength {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "signature of %d bytes", len(ws.Signature))
		}
		var sig crypto.Signature
		copy(sig[:], ws.Signature)
		tx.Signatures = append(tx.Signatures, Signature{Pubkey: key, Signature: sig})
	}
	return tx, nil
}
