// Package snowflakeapi file: internal/adapter/datasource/snowflakeapi/auth.go
package snowflakeapi

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/ssh"
)

// Snowflake 接受的令牌类型
const (
	TokenTypePAT     = "PROGRAMMATIC_ACCESS_TOKEN"
	TokenTypeKeyPair = "KEYPAIR_JWT"
)

// Snowflake 要求 JWT 有效期不超过一小时
const jwtLifetime = time.Hour

// Auth 是附加在每个请求上的认证信息
type Auth struct {
	Token     string
	TokenType string
}

// PATAuth 使用 Programmatic Access Token
func PATAuth(pat string) Auth {
	return Auth{Token: pat, TokenType: TokenTypePAT}
}

// KeyPairAuth 读取 RSA 私钥并签发一个 KEYPAIR_JWT
func KeyPairAuth(account, user, keyPath, passphrase string, now time.Time) (Auth, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return Auth{}, fmt.Errorf("读取私钥文件失败: %w", err)
	}
	key, err := ParsePrivateKey(pemBytes, passphrase)
	if err != nil {
		return Auth{}, err
	}
	token, err := SignJWT(account, user, key, now)
	if err != nil {
		return Auth{}, err
	}
	return Auth{Token: token, TokenType: TokenTypeKeyPair}, nil
}

// ParsePrivateKey 支持 PKCS#1 / PKCS#8 / OpenSSH 格式，以及带口令的 PEM
func ParsePrivateKey(pemBytes []byte, passphrase string) (*rsa.PrivateKey, error) {
	var (
		raw any
		err error
	)
	if passphrase != "" {
		raw, err = ssh.ParseRawPrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	} else {
		raw, err = ssh.ParseRawPrivateKey(pemBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	key, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("Snowflake 密钥对认证只支持 RSA 私钥")
	}
	return key, nil
}

// PublicKeyFingerprint 返回 "SHA256:<base64>" 形式的公钥指纹
func PublicKeyFingerprint(key *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("编码公钥失败: %w", err)
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

// SignJWT 签发 iss=ACCOUNT.USER.SHA256:fp, sub=ACCOUNT.USER 的 RS256 令牌
func SignJWT(account, user string, key *rsa.PrivateKey, now time.Time) (string, error) {
	fp, err := PublicKeyFingerprint(key)
	if err != nil {
		return "", err
	}
	qualified := jwtAccount(account) + "." + strings.ToUpper(user)
	claims := jwt.RegisteredClaims{
		Issuer:    qualified + "." + fp,
		Subject:   qualified,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("签发 JWT 失败: %w", err)
	}
	return signed, nil
}

// jwtAccount 取账户定位符中区域之前的部分并转为大写
func jwtAccount(account string) string {
	if i := strings.IndexByte(account, '.'); i >= 0 {
		account = account[:i]
	}
	return strings.ToUpper(account)
}
