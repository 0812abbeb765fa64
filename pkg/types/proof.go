package types

// FileProof 数据树返回的原始证明
// Proof 为紧凑证明编码，仅凭Fingerprint即可校验
type FileProof struct {
	Proof       []byte      `json:"proof"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// ToFileKeyProof 附加文件元数据，生成可提交上链的证明
func (p *FileProof) ToFileKeyProof(metadata FileMetadata) *FileKeyProof {
	return &FileKeyProof{
		FileMetadata: metadata,
		Fingerprint:  p.Fingerprint,
		Proof:        p.Proof,
	}
}

// FileKeyProof 文件级证明信封
// 验证方可同时校验默克尔路径和声明的文件属性
type FileKeyProof struct {
	FileMetadata FileMetadata `json:"file_metadata"`
	Fingerprint  Fingerprint  `json:"fingerprint"`
	Proof        []byte       `json:"proof"`
}

// FileKey 根据信封中的元数据重新计算文件标识
func (p *FileKeyProof) FileKey() (FileKey, error) {
	return p.FileMetadata.FileKey()
}

// FileProof 取出原始数据树证明
func (p *FileKeyProof) FileProof() *FileProof {
	return &FileProof{Proof: p.Proof, Fingerprint: p.Fingerprint}
}
