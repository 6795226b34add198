package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/gonzalop/mqstream"
)

// tcpFlow is one direction of a captured TCP connection.
type tcpFlow struct {
	name    string
	dec     *mqstream.Decoder
	nextSeq uint32
	synced  bool
}

// dumpPcap reassembles the MQTT side of every TCP connection in a pcap
// capture and prints the packets of each direction in capture order.
//
// Reassembly is in-order only: retransmitted bytes are dropped and a gap in
// the sequence space resets the flow's decoder, which then resynchronizes
// on the following frames.
func (d *dumper) dumpPcap(ctx context.Context, r io.Reader) error {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return fmt.Errorf("read pcap header: %w", err)
	}

	src := gopacket.NewPacketSource(pr, pr.LinkType())
	src.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	flows := make(map[string]*tcpFlow)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkt, err := src.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read pcap: %w", err)
		}
		if err := d.handleSegment(flows, pkt); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(flows))
	for name := range flows {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n := flows[name].dec.Buffered(); n > 0 {
			d.log.Warn().Str("stream", name).Int("bytes", n).Msg("capture ended inside a frame")
		}
	}
	return nil
}

func (d *dumper) handleSegment(flows map[string]*tcpFlow, pkt gopacket.Packet) error {
	tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if !ok {
		return nil
	}
	if int(tcp.SrcPort) != d.cfg.Port && int(tcp.DstPort) != d.cfg.Port {
		return nil
	}
	network := pkt.NetworkLayer()
	if network == nil {
		return nil
	}

	nf, tf := network.NetworkFlow(), tcp.TransportFlow()
	name := fmt.Sprintf("%s:%s>%s:%s", nf.Src(), tf.Src(), nf.Dst(), tf.Dst())

	flow := flows[name]
	if flow == nil {
		dec, err := d.newDecoder(name)
		if err != nil {
			return err
		}
		flow = &tcpFlow{name: name, dec: dec}
		flows[name] = flow
	}

	if tcp.SYN {
		flow.nextSeq = tcp.Seq + 1
		flow.synced = true
	} else if err := d.feed(flow, tcp.Seq, tcp.Payload); err != nil {
		return err
	}

	if tcp.FIN || tcp.RST {
		if n := flow.dec.Buffered(); n > 0 {
			d.log.Warn().Str("stream", name).Int("bytes", n).Msg("connection closed inside a frame")
		}
		// Release the partial frame from the shared buffered gauge.
		flow.dec.Reset()
		delete(flows, name)
	}
	return nil
}

// feed passes the new bytes of a segment to the flow's decoder.
func (d *dumper) feed(flow *tcpFlow, seq uint32, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	if !flow.synced {
		// Capture started mid-connection.
		flow.nextSeq = seq
		flow.synced = true
	}

	data := payload
	switch diff := int32(seq - flow.nextSeq); {
	case diff < 0:
		overlap := int(-diff)
		if overlap >= len(payload) {
			d.log.Debug().Str("stream", flow.name).Uint32("seq", seq).Msg("retransmission dropped")
			return nil
		}
		data = payload[overlap:]
	case diff > 0:
		d.log.Warn().Str("stream", flow.name).Int32("missing", diff).Msg("gap in capture, resynchronizing")
		flow.dec.Reset()
	}
	flow.nextSeq = seq + uint32(len(payload))

	pkts, err := flow.dec.Decode(data)
	for _, p := range pkts {
		if perr := d.out.Print(flow.name, p); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", flow.name, err)
	}
	return nil
}
