package pipeline

import (
	"fmt"
)

// ExampleTransportText is the worked example shown on the /example page: a
// gzip stream of an XML energy-measurement document, base64-encoded.
const ExampleTransportText = "H4sIAAAAAAAA/+1WTY/aMBC9V+p/iHIndpzwKeNVd5dKdAmlgFDbmxVciEoclDiw/PudfDmBdrccuqfd" +
	"EzPPb+aNxw8EvXkMd8ZBxEkQyaFpW9g0hPSjdSA3QzNVv1o984Z9/EDvRrf3t7vI/21AgUwGj0kwNLdK" +
	"7QcIHY9H6+hYUbxBBGMbffcmC38rQt4KZKK49IWpq9b/rgJyEgxkNOWhSPbcFwU8iXyu8in1LBb0M2E6" +
	"w6Ajb5EHEN7NxvdlDNl0NWefxxRlnxpcPXjsy8PXHxRlkYZHqynruzYmuGdjB2OKMqQ+9hbQ2QY0D0o5" +
	"1NCjy/mMzZZtj6IsKkG42arYMIMFU9TI89lRNTz1BE/SWIRCqrFUIj7wXdVkoXisGMGEtLDTIvbSdgZO" +
	"e4DxT4qKs5I4kusLmlvSspNC8Dmd/Jn1HiGGm/X77a4Ltyyy6p5BKEA13D8zUX1+WfAt5btAnZhNug1a" +
	"hVbSWy6l2NWrLwEYgMAoOtHny5j7mTkWp0SJkGF4pAuofkUp4s1J54B8At5BNJBMMJJJGoo1w9mL6eyM" +
	"MxcbAc24qmhNoNEf/SEApfy1Rf8iQc+Wf77z3IfN1eg9V3n1BawLJpCrdC1YB1vEdnpgEw3VpEhuCoi4" +
	"Vp+4PXibGtO0F0bL+A3pwosv+rV9rV9d/O7Xt+vX7lV+Ja/v187Vfn3/fX27fu1e5ddO73/5tQjyf1rs" +
	"CTCbf1wpCgAA"

// Example holds the three panes of the worked example.
type Example struct {
	Original  string
	Decoded   string
	Reencoded string
}

// RunExample decodes ExampleTransportText with compression, re-encodes the
// plaintext and checks that the re-encoded text decodes to the same
// plaintext. The re-encoded text need not equal the original literal.
func (p *Pipeline) RunExample() (Example, error) {
	decoded, err := p.Run(Decode, true, ExampleTransportText)
	if err != nil {
		return Example{}, fmt.Errorf("decode example: %w", err)
	}

	reencoded, err := p.Run(Encode, true, decoded)
	if err != nil {
		return Example{}, fmt.Errorf("re-encode example: %w", err)
	}

	again, err := p.Run(Decode, true, reencoded)
	if err != nil {
		return Example{}, fmt.Errorf("verify example: %w", err)
	}
	if again != decoded {
		return Example{}, fmt.Errorf("verify example: re-encoded text decodes to %d bytes, want %d", len(again), len(decoded))
	}

	return Example{
		Original:  ExampleTransportText,
		Decoded:   decoded,
		Reencoded: reencoded,
	}, nil
}
